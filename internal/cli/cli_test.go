package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	c := &Config{TokenFile: filepath.Join(t.TempDir(), "nested", "token")}

	require.NoError(t, c.LoadToken())
	assert.Empty(t, c.Token)

	require.NoError(t, c.SaveToken("abc"))
	loaded := &Config{TokenFile: c.TokenFile}
	require.NoError(t, loaded.LoadToken())
	assert.Equal(t, "abc", loaded.Token)

	require.NoError(t, loaded.ClearToken())
	require.NoError(t, loaded.ClearToken())
	assert.Empty(t, loaded.Token)
}

func TestLoadTokenKeepsExplicitToken(t *testing.T) {
	c := &Config{Token: "flag", TokenFile: filepath.Join(t.TempDir(), "token")}
	require.NoError(t, (&Config{TokenFile: c.TokenFile}).SaveToken("file"))

	require.NoError(t, c.LoadToken())
	assert.Equal(t, "flag", c.Token)
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"VALIDATION_FAILED","message":"team name is required","field":"name"}}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL+"/", "tok").Post(context.Background(), "/api/v1/teams", map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, "name: team name is required (VALIDATION_FAILED)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").Get(context.Background(), "/api/v1/teams", nil)
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestTextOutputStandings(t *testing.T) {
	var out bytes.Buffer
	NewOutput("text", &out, &out).Print([]Standing{
		{Rank: 1, Team: Team{Name: "Alpha", Points: 30}},
		{Rank: 1, Team: Team{Name: "Bravo", Points: 30}},
		{Rank: 3, Team: Team{Name: "Charlie", Points: 5}},
	})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "RANK")
	assert.Contains(t, string(lines[3]), "Charlie")
}

func TestJSONOutputMessage(t *testing.T) {
	var out bytes.Buffer
	NewOutput("json", &out, &out).PrintMessage("Logged out")
	assert.JSONEq(t, `{"message":"Logged out"}`, out.String())
}

func TestEmptyListText(t *testing.T) {
	var out bytes.Buffer
	NewOutput("text", &out, &out).Print([]Team{})
	assert.Equal(t, "No teams\n", out.String())
}

func TestPollHealthRetriesUntilOK(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "starting", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":"2024-01-01T12:00:00Z"}`))
	}))
	defer srv.Close()

	prev := client
	client = NewClient(srv.URL, "")
	t.Cleanup(func() { client = prev })

	result, err := pollHealth(context.Background(), 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollHealthWithoutWaitTriesOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	prev := client
	client = NewClient(srv.URL, "")
	t.Cleanup(func() { client = prev })

	_, err := pollHealth(context.Background(), 0)
	assert.ErrorContains(t, err, "HTTP 503")
	assert.Equal(t, int32(1), calls.Load())
}
