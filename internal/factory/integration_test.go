package factory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/broadcast"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/ledger"
)

type IntegrationSuite struct {
	suite.Suite
	app   *TestApp
	ctx   context.Context
	admin string
	user  string
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()

	var err error
	s.admin, err = s.app.TokenFor(s.ctx, "admin", model.RoleAdmin)
	s.Require().NoError(err)
	s.user, err = s.app.TokenFor(s.ctx, "player", model.RoleUser)
	s.Require().NoError(err)
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func points(n int64) *int64 { return &n }

// drain collects every signal already queued on the subscription
func drain(sub *broadcast.Subscription) []model.Topic {
	var got []model.Topic
	for {
		select {
		case topic, ok := <-sub.Signals():
			if !ok {
				return got
			}
			got = append(got, topic)
		default:
			return got
		}
	}
}

// Test: a scoring session from team creation through the leaderboard, with subscribers notified
func (s *IntegrationSuite) TestScoringSessionFlow() {
	s.app.MockIDs.Queue("team-red", "team-blue")
	sub, err := s.app.Coordinator.Subscribe("viewer")
	s.Require().NoError(err)

	red, err := s.app.Scoreboard.CreateTeam(s.ctx, s.admin, model.TeamInput{Name: "Red", Points: points(10)})
	s.Require().NoError(err)
	s.Equal(model.TeamID("team-red"), red.ID)
	blue, err := s.app.Scoreboard.CreateTeam(s.ctx, s.admin, model.TeamInput{Name: "Blue"})
	s.Require().NoError(err)
	s.ElementsMatch(
		[]model.Topic{model.TopicTeams, model.TopicLeaderboard, model.TopicTeams, model.TopicLeaderboard},
		drain(sub))

	s.app.MockClock.Advance(time.Minute)
	updated, err := s.app.Scoreboard.UpdatePoints(s.ctx, s.admin, blue.ID, ledger.OpAdd, 25)
	s.Require().NoError(err)
	s.Equal(int64(25), updated.Points)
	s.True(updated.UpdatedAt.After(updated.CreatedAt))
	s.ElementsMatch([]model.Topic{model.TopicTeams, model.TopicLeaderboard}, drain(sub))

	_, err = s.app.Scoreboard.UpdatePoints(s.ctx, s.admin, red.ID, ledger.OpSubtract, 100)
	s.Require().NoError(err)
	drain(sub)

	standings, err := s.app.Scoreboard.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(standings, 2)
	s.Equal("Blue", standings[0].Team.Name)
	s.Equal(1, standings[0].Rank)
	s.Equal(int64(0), standings[1].Team.Points)
	s.Equal(2, standings[1].Rank)

	_, err = s.app.Scoreboard.DeleteTeam(s.ctx, s.admin, red.ID)
	s.Require().NoError(err)
	teams, err := s.app.Scoreboard.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
	s.ElementsMatch([]model.Topic{model.TopicTeams, model.TopicLeaderboard}, drain(sub))
}

// Test: a token issued by the auth service is what the gate checks on mutation
func (s *IntegrationSuite) TestRoleEnforcementThroughIssuedTokens() {
	sub, err := s.app.Coordinator.Subscribe("viewer")
	s.Require().NoError(err)

	_, err = s.app.Scoreboard.CreateTeam(s.ctx, "", model.TeamInput{Name: "Anon"})
	s.ErrorIs(err, model.ErrUnauthenticated)
	_, err = s.app.Scoreboard.CreateTeam(s.ctx, s.user, model.TeamInput{Name: "User"})
	s.ErrorIs(err, model.ErrForbidden)
	_, err = s.app.Scoreboard.CreateTeam(s.ctx, "garbage", model.TeamInput{Name: "Bad"})
	s.ErrorIs(err, model.ErrUnauthenticated)

	teams, err := s.app.Scoreboard.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Empty(teams)
	s.Empty(drain(sub))
}

// Test: tokens stop working once they expire on the shared clock
func (s *IntegrationSuite) TestExpiredTokenRejected() {
	s.app.MockClock.Advance(s.app.AuthService.TokenTTL() + 1)

	_, err := s.app.Scoreboard.CreateTeam(s.ctx, s.admin, model.TeamInput{Name: "Late"})
	s.ErrorIs(err, model.ErrUnauthenticated)
}

// Test: challenge mutations only signal the challenges topic
func (s *IntegrationSuite) TestChallengeFlow() {
	sub, err := s.app.Coordinator.Subscribe("viewer")
	s.Require().NoError(err)

	ch, err := s.app.Scoreboard.CreateChallenge(s.ctx, s.admin, model.ChallengeInput{Title: "Quiz", Points: points(50)})
	s.Require().NoError(err)
	s.Equal(model.ChallengeStatusActive, ch.Status)

	status := model.ChallengeStatusCompleted
	_, err = s.app.Scoreboard.UpdateChallenge(s.ctx, s.admin, ch.ID, model.ChallengePatch{Status: &status})
	s.Require().NoError(err)

	s.Equal([]model.Topic{model.TopicChallenges, model.TopicChallenges}, drain(sub))
}

// Test: concurrent point updates from many callers are all applied
func (s *IntegrationSuite) TestConcurrentPointUpdates() {
	team, err := s.app.Scoreboard.CreateTeam(s.ctx, s.admin, model.TeamInput{Name: "Busy"})
	s.Require().NoError(err)

	const workers = 40
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.app.Scoreboard.UpdatePoints(s.ctx, s.admin, team.ID, ledger.OpAdd, 5); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	got, err := s.app.Scoreboard.GetTeam(s.ctx, team.ID)
	s.Require().NoError(err)
	s.Equal(int64(workers*5), got.Points)
}

// Test: closing the app disconnects subscribers and refuses new ones
func (s *IntegrationSuite) TestCloseDisconnectsSubscribers() {
	sub, err := s.app.Coordinator.Subscribe("viewer")
	s.Require().NoError(err)

	s.Require().NoError(s.app.Close())

	_, ok := <-sub.Signals()
	s.False(ok)
	_, err = s.app.Coordinator.Subscribe("late")
	s.True(errors.Is(err, broadcast.ErrClosed))
}
