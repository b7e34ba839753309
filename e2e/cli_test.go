package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamboard/internal/api"
	"github.com/mcoot/teamboard/internal/cli"
	"github.com/mcoot/teamboard/internal/factory"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/testutil"
)

// cliRunner runs the CLI in-process against a server
type cliRunner struct {
	serverURL string
	tokenFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	t.Setenv("TEAMBOARD_TOKEN", "")

	return &cliRunner{
		serverURL: serverURL,
		tokenFile: filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)
	return execute(context.Background(), fullArgs)
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)
	return execute(context.Background(), fullArgs)
}

func execute(ctx context.Context, args []string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// testServer serves the full API over a test app
type testServer struct {
	app *factory.TestApp
	url string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:       testutil.NopLogger(),
		Clock:        app.MockClock,
		AuthService:  app.AuthService,
		Scoreboard:   app.Scoreboard,
		Coordinator:  app.Coordinator,
		SSEKeepalive: time.Hour,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		// End streams first so Close does not wait on them
		_ = app.Close()
		srv.Close()
	})

	return &testServer{app: app, url: srv.URL}
}

// createAdmin adds an admin account directly through the auth service
func (ts *testServer) createAdmin(t *testing.T) {
	t.Helper()
	_, err := ts.app.AuthService.CreateUser(context.Background(), "admin", "admin@example.com", "admin123", model.RoleAdmin)
	require.NoError(t, err)
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decode[cli.HealthResult](t, output)
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_AuthCommands(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("auth", "register", "--username", "alice", "--email", "alice@example.com", "--password", "secret123")
	require.NoError(t, err, "output: %s", output)
	registered := decode[cli.AuthResult](t, output)
	assert.Equal(t, "user", registered.User.Role)
	assert.NotEmpty(t, registered.Token)

	// Token should be saved in the token file
	output, err = runner.run("auth", "verify")
	require.NoError(t, err, "output: %s", output)
	verified := decode[cli.VerifyResult](t, output)
	assert.True(t, verified.Valid)
	assert.Equal(t, registered.User.ID, verified.User.ID)

	_, err = runner.run("auth", "logout")
	require.NoError(t, err)
	output, err = runner.run("auth", "verify")
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}

func TestCLI_UserCannotMutate(t *testing.T) {
	ts := startTestServer(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("auth", "register", "--username", "bob", "--email", "bob@example.com", "--password", "secret123")
	require.NoError(t, err, "output: %s", output)

	output, err = runner.run("teams", "create", "--name", "Sneaky")
	assert.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")
}

func TestCLI_TeamAndPointsFlow(t *testing.T) {
	ts := startTestServer(t)
	ts.createAdmin(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("auth", "login", "--email", "admin@example.com", "--password", "admin123")
	require.NoError(t, err, "output: %s", output)

	output, err = runner.run("teams", "create", "--name", "Alpha", "--points", "10")
	require.NoError(t, err, "output: %s", output)
	alpha := decode[cli.Team](t, output)
	assert.Equal(t, int64(10), alpha.Points)
	assert.Equal(t, "active", alpha.Status)

	output, err = runner.run("teams", "create", "--name", "Bravo", "--color", "#10B981")
	require.NoError(t, err, "output: %s", output)
	bravo := decode[cli.Team](t, output)

	output, err = runner.run("points", "add", bravo.ID, "25")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, int64(25), decode[cli.Team](t, output).Points)

	output, err = runner.run("points", "subtract", alpha.ID, "100")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, int64(0), decode[cli.Team](t, output).Points)

	output, err = runner.run("points", "set", alpha.ID, "25")
	require.NoError(t, err, "output: %s", output)

	_, err = runner.run("points", "add", alpha.ID, "lots")
	assert.Error(t, err)

	output, err = runner.run("leaderboard")
	require.NoError(t, err, "output: %s", output)
	standings := decode[[]cli.Standing](t, output)
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 1, standings[1].Rank)

	output, err = runner.run("teams", "update", alpha.ID, "--status", "disqualified")
	require.NoError(t, err, "output: %s", output)
	updated := decode[cli.Team](t, output)
	assert.Equal(t, "disqualified", updated.Status)
	assert.Equal(t, "Alpha", updated.Name)

	output, err = runner.run("teams", "delete", bravo.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, bravo.ID, decode[cli.DeleteTeamResult](t, output).Team.ID)

	output, err = runner.run("teams", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Len(t, decode[[]cli.Team](t, output), 1)

	output, err = runner.run("teams", "get", bravo.ID)
	assert.Error(t, err)
	assert.Contains(t, output, "TEAM_NOT_FOUND")
}

func TestCLI_ChallengeCommands(t *testing.T) {
	ts := startTestServer(t)
	ts.createAdmin(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("auth", "login", "--email", "admin@example.com", "--password", "admin123")
	require.NoError(t, err, "output: %s", output)
	token := decode[cli.AuthResult](t, output).Token

	output, err = runner.runWithToken(token, "challenges", "create", "--title", "Quiz", "--points", "50")
	require.NoError(t, err, "output: %s", output)
	quiz := decode[cli.Challenge](t, output)
	assert.Equal(t, "active", quiz.Status)

	output, err = runner.runWithToken(token, "challenges", "update", quiz.ID, "--status", "completed")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "completed", decode[cli.Challenge](t, output).Status)

	output, err = runner.run("challenges", "list")
	require.NoError(t, err, "output: %s", output)
	assert.Len(t, decode[[]cli.Challenge](t, output), 1)

	output, err = runner.runWithToken(token, "challenges", "delete", quiz.ID)
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "Quiz", decode[cli.DeleteChallengeResult](t, output).Challenge.Title)
}

func TestCLI_EventsStream(t *testing.T) {
	ts := startTestServer(t)
	ts.createAdmin(t)
	runner := newCLIRunner(t, ts.url)

	output, err := runner.run("auth", "login", "--email", "admin@example.com", "--password", "admin123")
	require.NoError(t, err, "output: %s", output)
	token := decode[cli.AuthResult](t, output).Token

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		output string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := execute(ctx, []string{"--server", ts.url, "events", "--json", "--count", "2"})
		done <- result{out, err}
	}()

	require.Eventually(t, func() bool { return ts.app.Coordinator.SubscriberCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	// Mutate through the service so only the stream goroutine runs the CLI
	_, err = ts.app.Scoreboard.CreateTeam(context.Background(), token, model.TeamInput{Name: "Live"})
	require.NoError(t, err)

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		t.Fatal("events command did not exit")
	}
	require.NoError(t, res.err)

	var events []string
	for _, line := range strings.Split(strings.TrimSpace(res.output), "\n") {
		var evt cli.SSEEvent
		require.NoError(t, json.Unmarshal([]byte(line), &evt), line)
		events = append(events, evt.Event)
	}
	require.Len(t, events, 3)
	assert.Equal(t, "connected", events[0])
	assert.ElementsMatch(t, []string{"teams:updated", "leaderboard:updated"}, events[1:])
}
