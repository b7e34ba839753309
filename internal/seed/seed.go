// Package seed loads sample teams, challenges and accounts into a store.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/teamboard/internal/dependencies/clock"
	"github.com/mcoot/teamboard/internal/dependencies/ids"
	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

// Palette is the set of team colors handed out in order
var Palette = []string{
	"#3B82F6", // Blue
	"#EF4444", // Red
	"#10B981", // Green
	"#F59E0B", // Amber
	"#8B5CF6", // Purple
	"#EC4899", // Pink
	"#06B6D4", // Cyan
	"#F97316", // Orange
}

// TeamSeed describes a sample team
type TeamSeed struct {
	Name   string
	Points int64
}

// ChallengeSeed describes a sample challenge
type ChallengeSeed struct {
	Title       string
	Description string
	Points      int64
	Status      model.ChallengeStatus
}

// UserSeed describes a sample account
type UserSeed struct {
	Username string
	Email    string
	Password string
	Role     model.Role
}

// Teams are colored from Palette by position
var Teams = []TeamSeed{
	{Name: "Équipe Alpha", Points: 150},
	{Name: "Équipe Beta", Points: 120},
	{Name: "Équipe Gamma", Points: 95},
	{Name: "Équipe Delta", Points: 80},
	{Name: "Équipe Epsilon", Points: 65},
	{Name: "Équipe Zeta", Points: 50},
}

var Challenges = []ChallengeSeed{
	{Title: "Défi Sprint", Description: "Compléter un sprint de développement", Points: 50, Status: model.ChallengeStatusActive},
	{Title: "Défi Design", Description: "Créer un design innovant", Points: 30, Status: model.ChallengeStatusActive},
	{Title: "Défi Test", Description: "Atteindre 90% de couverture de tests", Points: 40, Status: model.ChallengeStatusActive},
	{Title: "Défi Documentation", Description: "Documenter le projet", Points: 25, Status: model.ChallengeStatusCompleted},
}

var Users = []UserSeed{
	{Username: "admin", Email: "admin@example.com", Password: "admin123", Role: model.RoleAdmin},
	{Username: "user1", Email: "user1@example.com", Password: "user123", Role: model.RoleUser},
}

// AccountCreator hashes and stores an account
type AccountCreator interface {
	CreateUser(ctx context.Context, username, email, password string, role model.Role) (*model.User, error)
}

// Result counts what a seed run wrote
type Result struct {
	Teams      int
	Challenges int
	Users      int
}

// Seeder replaces store contents with the sample data
type Seeder struct {
	storage  storage.Storage
	accounts AccountCreator
	clock    clock.Clock
	ids      ids.Generator
	logger   *slog.Logger
}

// New creates a Seeder
func New(storage storage.Storage, accounts AccountCreator, clock clock.Clock, ids ids.Generator, logger *slog.Logger) *Seeder {
	return &Seeder{
		storage:  storage,
		accounts: accounts,
		clock:    clock,
		ids:      ids,
		logger:   logger.With(slog.String("component", "seed")),
	}
}

// Seed clears teams, challenges and accounts and loads the sample set
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	var res Result
	var err error

	if res.Teams, err = s.seedTeams(ctx); err != nil {
		return res, err
	}
	if res.Challenges, err = s.seedChallenges(ctx); err != nil {
		return res, err
	}
	if res.Users, err = s.ResetUsers(ctx); err != nil {
		return res, err
	}

	s.logger.Info("seed complete",
		slog.Int("teams", res.Teams),
		slog.Int("challenges", res.Challenges),
		slog.Int("users", res.Users))
	return res, nil
}

func (s *Seeder) seedTeams(ctx context.Context) (int, error) {
	if err := s.storage.DeleteAllTeams(ctx); err != nil {
		return 0, fmt.Errorf("clear teams: %w", err)
	}

	now := s.clock.Now()
	for i, t := range Teams {
		team := &model.Team{
			ID:        model.TeamID(s.ids.NewID()),
			Name:      t.Name,
			Points:    t.Points,
			Status:    model.TeamStatusActive,
			Color:     Palette[i%len(Palette)],
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := team.Validate(); err != nil {
			return i, err
		}
		if err := s.storage.InsertTeam(ctx, team); err != nil {
			return i, fmt.Errorf("insert team %q: %w", t.Name, err)
		}
	}
	return len(Teams), nil
}

func (s *Seeder) seedChallenges(ctx context.Context) (int, error) {
	if err := s.storage.DeleteAllChallenges(ctx); err != nil {
		return 0, fmt.Errorf("clear challenges: %w", err)
	}

	// Later entries are created later so newest-first listing is stable
	base := s.clock.Now()
	for i, c := range Challenges {
		created := base.Add(time.Duration(i) * time.Second)
		challenge := &model.Challenge{
			ID:          model.ChallengeID(s.ids.NewID()),
			Title:       c.Title,
			Description: c.Description,
			Points:      c.Points,
			Status:      c.Status,
			CreatedAt:   created,
			UpdatedAt:   created,
		}
		if err := challenge.Validate(); err != nil {
			return i, err
		}
		if err := s.storage.InsertChallenge(ctx, challenge); err != nil {
			return i, fmt.Errorf("insert challenge %q: %w", c.Title, err)
		}
	}
	return len(Challenges), nil
}

// ResetUsers deletes every account and recreates the sample accounts
func (s *Seeder) ResetUsers(ctx context.Context) (int, error) {
	if err := s.storage.DeleteAllUsers(ctx); err != nil {
		return 0, fmt.Errorf("clear users: %w", err)
	}

	for i, u := range Users {
		if _, err := s.accounts.CreateUser(ctx, u.Username, u.Email, u.Password, u.Role); err != nil {
			return i, fmt.Errorf("create user %q: %w", u.Username, err)
		}
	}
	s.logger.Info("users reset", slog.Int("count", len(Users)))
	return len(Users), nil
}
