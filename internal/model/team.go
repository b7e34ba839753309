package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TeamID uniquely identifies a team
type TeamID string

// TeamStatus represents the participation state of a team
type TeamStatus string

const (
	TeamStatusActive       TeamStatus = "active"
	TeamStatusInactive     TeamStatus = "inactive"
	TeamStatusDisqualified TeamStatus = "disqualified"
)

// DefaultTeamColor is used when a team is created without a color
const DefaultTeamColor = "#3B82F6"

// MaxTeamNameLength is the maximum team name length in characters
const MaxTeamNameLength = 50

// Valid reports whether the status is one of the known values
func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusActive, TeamStatusInactive, TeamStatusDisqualified:
		return true
	}
	return false
}

// Team is a competing team on the scoreboard
type Team struct {
	ID        TeamID     `json:"id"`
	Name      string     `json:"name"`
	Points    int64      `json:"points"`
	Status    TeamStatus `json:"status"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Clone returns a copy of the team
func (t *Team) Clone() *Team {
	c := *t
	return &c
}

// TeamInput carries the fields accepted when creating a team
type TeamInput struct {
	Name   string
	Points *int64
	Status TeamStatus
	Color  string
}

// TeamPatch carries optional field updates for a team. Nil fields are left unchanged.
type TeamPatch struct {
	Name   *string
	Points *int64
	Status *TeamStatus
	Color  *string
}

// Apply writes the set fields of the patch onto the team
func (p TeamPatch) Apply(t *Team) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Points != nil {
		t.Points = *p.Points
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
}

// Validate checks the team against its schema
func (t *Team) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return NewValidationError("name", "team name is required")
	}
	if utf8.RuneCountInString(name) > MaxTeamNameLength {
		return NewValidationError("name", "team name cannot exceed 50 characters")
	}
	if t.Points < 0 {
		return NewValidationError("points", "points cannot be negative")
	}
	if !t.Status.Valid() {
		return NewValidationError("status", "status must be one of active, inactive, disqualified")
	}
	return nil
}
