package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	teams      map[model.TeamID]*model.Team
	teamNames  map[string]model.TeamID
	challenges map[model.ChallengeID]*model.Challenge
	users      map[model.UserID]*model.User
	userEmails map[string]model.UserID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		teams:      make(map[model.TeamID]*model.Team),
		teamNames:  make(map[string]model.TeamID),
		challenges: make(map[model.ChallengeID]*model.Challenge),
		users:      make(map[model.UserID]*model.User),
		userEmails: make(map[string]model.UserID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Team operations

func (s *Storage) ListTeams(ctx context.Context) ([]*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := make([]*model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, t.Clone())
	}
	model.SortTeams(teams)
	return teams, nil
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	return team.Clone(), nil
}

func (s *Storage) InsertTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.teamNames[team.Name]; taken {
		return model.ErrDuplicateName
	}
	s.teams[team.ID] = team.Clone()
	s.teamNames[team.Name] = team.ID
	return nil
}

func (s *Storage) UpdateTeam(ctx context.Context, team *model.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.teams[team.ID]
	if !ok {
		return model.ErrTeamNotFound
	}
	if owner, taken := s.teamNames[team.Name]; taken && owner != team.ID {
		return model.ErrDuplicateName
	}
	delete(s.teamNames, existing.Name)
	s.teams[team.ID] = team.Clone()
	s.teamNames[team.Name] = team.ID
	return nil
}

func (s *Storage) DeleteTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return nil, model.ErrTeamNotFound
	}
	delete(s.teams, id)
	delete(s.teamNames, team.Name)
	return team, nil
}

func (s *Storage) DeleteAllTeams(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = make(map[model.TeamID]*model.Team)
	s.teamNames = make(map[string]model.TeamID)
	return nil
}

// Challenge operations

func (s *Storage) ListChallenges(ctx context.Context) ([]*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenges := make([]*model.Challenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		challenges = append(challenges, c.Clone())
	}
	model.SortChallenges(challenges)
	return challenges, nil
}

func (s *Storage) GetChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, model.ErrChallengeNotFound
	}
	return challenge.Clone(), nil
}

func (s *Storage) InsertChallenge(ctx context.Context, challenge *model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = challenge.Clone()
	return nil
}

func (s *Storage) UpdateChallenge(ctx context.Context, challenge *model.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[challenge.ID]; !ok {
		return model.ErrChallengeNotFound
	}
	s.challenges[challenge.ID] = challenge.Clone()
	return nil
}

func (s *Storage) DeleteChallenge(ctx context.Context, id model.ChallengeID) (*model.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return nil, model.ErrChallengeNotFound
	}
	delete(s.challenges, id)
	return challenge, nil
}

func (s *Storage) DeleteAllChallenges(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges = make(map[model.ChallengeID]*model.Challenge)
	return nil
}

// User operations

func (s *Storage) InsertUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.userEmails[email]; taken {
		return model.ErrEmailExists
	}
	u := *user
	u.Email = email
	s.users[user.ID] = &u
	s.userEmails[email] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.userEmails[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *Storage) DeleteAllUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[model.UserID]*model.User)
	s.userEmails = make(map[string]model.UserID)
	return nil
}
