// Package storagetest holds a conformance suite every storage backend must pass.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

// Suite exercises the storage.Storage contract against a fresh backend per test
type Suite struct {
	suite.Suite

	// NewStorage returns an empty backend. Cleanup is registered through t.
	NewStorage func(t *testing.T) storage.Storage

	storage storage.Storage
	ctx     context.Context
	now     time.Time
}

func (s *Suite) SetupTest() {
	s.storage = s.NewStorage(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) team(id, name string, points int64) *model.Team {
	return &model.Team{
		ID:        model.TeamID(id),
		Name:      name,
		Points:    points,
		Status:    model.TeamStatusActive,
		Color:     model.DefaultTeamColor,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
}

func (s *Suite) challenge(id, title string, createdAt time.Time) *model.Challenge {
	return &model.Challenge{
		ID:          model.ChallengeID(id),
		Title:       title,
		Description: "desc",
		Points:      25,
		Status:      model.ChallengeStatusActive,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// Team tests

func (s *Suite) TestInsertAndGetTeam() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 150)))

	got, err := s.storage.GetTeam(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(model.TeamID("t1"), got.ID)
	s.Equal("Alpha", got.Name)
	s.Equal(int64(150), got.Points)
	s.Equal(model.TeamStatusActive, got.Status)
	s.Equal(model.DefaultTeamColor, got.Color)
	s.True(s.now.Equal(got.CreatedAt), "created_at round trips")
}

func (s *Suite) TestGetTeamNotFound() {
	_, err := s.storage.GetTeam(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestInsertTeamDuplicateNameKeepsOriginal() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))

	err := s.storage.InsertTeam(s.ctx, s.team("t2", "Alpha", 99))
	s.ErrorIs(err, model.ErrDuplicateName)

	original, err := s.storage.GetTeam(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(int64(10), original.Points)

	_, err = s.storage.GetTeam(s.ctx, "t2")
	s.ErrorIs(err, model.ErrTeamNotFound)

	teams, err := s.storage.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Len(teams, 1)
}

func (s *Suite) TestReturnedTeamIsACopy() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))

	got, err := s.storage.GetTeam(s.ctx, "t1")
	s.Require().NoError(err)
	got.Points = 500

	again, err := s.storage.GetTeam(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(int64(10), again.Points)
}

func (s *Suite) TestUpdateTeam() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))

	updated := s.team("t1", "Alpha Prime", 42)
	updated.Status = model.TeamStatusDisqualified
	updated.UpdatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.storage.UpdateTeam(s.ctx, updated))

	got, err := s.storage.GetTeam(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal("Alpha Prime", got.Name)
	s.Equal(int64(42), got.Points)
	s.Equal(model.TeamStatusDisqualified, got.Status)

	// The old name is free again
	s.NoError(s.storage.InsertTeam(s.ctx, s.team("t2", "Alpha", 0)))
}

func (s *Suite) TestUpdateTeamKeepingItsName() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))

	s.NoError(s.storage.UpdateTeam(s.ctx, s.team("t1", "Alpha", 11)))
}

func (s *Suite) TestUpdateTeamRenameCollision() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t2", "Beta", 20)))

	err := s.storage.UpdateTeam(s.ctx, s.team("t2", "Alpha", 20))
	s.ErrorIs(err, model.ErrDuplicateName)

	beta, err := s.storage.GetTeam(s.ctx, "t2")
	s.Require().NoError(err)
	s.Equal("Beta", beta.Name)
}

func (s *Suite) TestUpdateTeamNotFound() {
	err := s.storage.UpdateTeam(s.ctx, s.team("missing", "Ghost", 0))
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestDeleteTeam() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))

	deleted, err := s.storage.DeleteTeam(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal("Alpha", deleted.Name)

	_, err = s.storage.GetTeam(s.ctx, "t1")
	s.ErrorIs(err, model.ErrTeamNotFound)

	// Name can be reused after delete
	s.NoError(s.storage.InsertTeam(s.ctx, s.team("t2", "Alpha", 0)))
}

func (s *Suite) TestDeleteTeamNotFound() {
	_, err := s.storage.DeleteTeam(s.ctx, "missing")
	s.ErrorIs(err, model.ErrTeamNotFound)
}

func (s *Suite) TestListTeamsOrder() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("c", "C", 5)))
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("b", "B", 10)))
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("a", "A", 10)))

	teams, err := s.storage.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(teams, 3)
	s.Equal("A", teams[0].Name)
	s.Equal("B", teams[1].Name)
	s.Equal("C", teams[2].Name)
}

func (s *Suite) TestListTeamsEmpty() {
	teams, err := s.storage.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Empty(teams)
}

func (s *Suite) TestDeleteAllTeams() {
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t1", "Alpha", 10)))
	s.Require().NoError(s.storage.InsertTeam(s.ctx, s.team("t2", "Beta", 10)))

	s.Require().NoError(s.storage.DeleteAllTeams(s.ctx))

	teams, err := s.storage.ListTeams(s.ctx)
	s.Require().NoError(err)
	s.Empty(teams)
	s.NoError(s.storage.InsertTeam(s.ctx, s.team("t3", "Alpha", 0)))
}

// Challenge tests

func (s *Suite) TestChallengeLifecycle() {
	c := s.challenge("c1", "Sprint", s.now)
	s.Require().NoError(s.storage.InsertChallenge(s.ctx, c))

	got, err := s.storage.GetChallenge(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Sprint", got.Title)
	s.Equal("desc", got.Description)
	s.Equal(int64(25), got.Points)

	got.Status = model.ChallengeStatusCompleted
	s.Require().NoError(s.storage.UpdateChallenge(s.ctx, got))

	got, err = s.storage.GetChallenge(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal(model.ChallengeStatusCompleted, got.Status)

	deleted, err := s.storage.DeleteChallenge(s.ctx, "c1")
	s.Require().NoError(err)
	s.Equal("Sprint", deleted.Title)

	_, err = s.storage.GetChallenge(s.ctx, "c1")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *Suite) TestChallengeNotFound() {
	_, err := s.storage.GetChallenge(s.ctx, "missing")
	s.ErrorIs(err, model.ErrChallengeNotFound)

	err = s.storage.UpdateChallenge(s.ctx, s.challenge("missing", "x", s.now))
	s.ErrorIs(err, model.ErrChallengeNotFound)

	_, err = s.storage.DeleteChallenge(s.ctx, "missing")
	s.ErrorIs(err, model.ErrChallengeNotFound)
}

func (s *Suite) TestListChallengesNewestFirst() {
	s.Require().NoError(s.storage.InsertChallenge(s.ctx, s.challenge("old", "Old", s.now)))
	s.Require().NoError(s.storage.InsertChallenge(s.ctx, s.challenge("new", "New", s.now.Add(time.Hour))))

	challenges, err := s.storage.ListChallenges(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(challenges, 2)
	s.Equal("New", challenges[0].Title)
	s.Equal("Old", challenges[1].Title)

	s.Require().NoError(s.storage.DeleteAllChallenges(s.ctx))
	challenges, err = s.storage.ListChallenges(s.ctx)
	s.Require().NoError(err)
	s.Empty(challenges)
}

// User tests

func (s *Suite) TestUserLifecycle() {
	user := &model.User{
		ID:           "u1",
		Username:     "admin",
		Email:        "Admin@Example.com",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
		CreatedAt:    s.now,
	}
	s.Require().NoError(s.storage.InsertUser(s.ctx, user))

	got, err := s.storage.GetUser(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("admin", got.Username)
	s.Equal("admin@example.com", got.Email)
	s.Equal(model.RoleAdmin, got.Role)

	byEmail, err := s.storage.GetUserByEmail(s.ctx, "ADMIN@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("u1"), byEmail.ID)

	dup := *user
	dup.ID = "u2"
	dup.Email = "admin@example.com"
	s.ErrorIs(s.storage.InsertUser(s.ctx, &dup), model.ErrEmailExists)

	s.Require().NoError(s.storage.DeleteAllUsers(s.ctx))
	_, err = s.storage.GetUser(s.ctx, "u1")
	s.ErrorIs(err, model.ErrUserNotFound)
	_, err = s.storage.GetUserByEmail(s.ctx, "admin@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.storage.GetUserByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}
