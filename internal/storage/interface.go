package storage

import (
	"context"

	"github.com/mcoot/teamboard/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations return copies: mutating a returned record never changes stored state until it is
// written back. Unique fields (team name, user email) are enforced here, so a colliding write fails
// instead of overwriting.
type Storage interface {
	// Team operations
	ListTeams(ctx context.Context) ([]*model.Team, error) // points desc, name asc
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	InsertTeam(ctx context.Context, team *model.Team) error
	UpdateTeam(ctx context.Context, team *model.Team) error
	DeleteTeam(ctx context.Context, id model.TeamID) (*model.Team, error)
	DeleteAllTeams(ctx context.Context) error

	// Challenge operations
	ListChallenges(ctx context.Context) ([]*model.Challenge, error) // newest first
	GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error)
	InsertChallenge(ctx context.Context, challenge *model.Challenge) error
	UpdateChallenge(ctx context.Context, challenge *model.Challenge) error
	DeleteChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error)
	DeleteAllChallenges(ctx context.Context) error

	// User operations
	InsertUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteAllUsers(ctx context.Context) error

	Close() error
}
