package response

import (
	"time"

	"github.com/mcoot/teamboard/internal/model"
	"github.com/mcoot/teamboard/internal/services/auth"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
)

// Team represents a team in API responses
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Points    int64     `json:"points"`
	Status    string    `json:"status"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamFromModel converts a model.Team to a response Team
func TeamFromModel(t *model.Team) Team {
	return Team{
		ID:        string(t.ID),
		Name:      t.Name,
		Points:    t.Points,
		Status:    string(t.Status),
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// TeamsFromModel converts a slice of teams
func TeamsFromModel(teams []*model.Team) []Team {
	result := make([]Team, len(teams))
	for i, t := range teams {
		result[i] = TeamFromModel(t)
	}
	return result
}

// DeleteTeamResponse is the response for deleting a team
type DeleteTeamResponse struct {
	Message string `json:"message"`
	Team    Team   `json:"team"`
}

// Challenge represents a challenge in API responses
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Points      int64     `json:"points"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ChallengeFromModel converts a model.Challenge to a response Challenge
func ChallengeFromModel(c *model.Challenge) Challenge {
	return Challenge{
		ID:          string(c.ID),
		Title:       c.Title,
		Description: c.Description,
		Points:      c.Points,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ChallengesFromModel converts a slice of challenges
func ChallengesFromModel(challenges []*model.Challenge) []Challenge {
	result := make([]Challenge, len(challenges))
	for i, c := range challenges {
		result[i] = ChallengeFromModel(c)
	}
	return result
}

// DeleteChallengeResponse is the response for deleting a challenge
type DeleteChallengeResponse struct {
	Message   string    `json:"message"`
	Challenge Challenge `json:"challenge"`
}

// Standing is one leaderboard row
type Standing struct {
	Rank int  `json:"rank"`
	Team Team `json:"team"`
}

// LeaderboardFromStandings converts scoreboard standings
func LeaderboardFromStandings(standings []scoreboard.Standing) []Standing {
	result := make([]Standing, len(standings))
	for i, s := range standings {
		result[i] = Standing{Rank: s.Rank, Team: TeamFromModel(s.Team)}
	}
	return result
}

// User represents an account in API responses. The password hash is never exposed.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is the response for login and register
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      UserFromModel(s.User),
	}
}

// VerifyResponse is the response for token verification
type VerifyResponse struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
