package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

// ChallengeID uniquely identifies a challenge
type ChallengeID string

// ChallengeStatus represents where a challenge is in its lifecycle
type ChallengeStatus string

const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
	ChallengeStatusCancelled ChallengeStatus = "cancelled"
)

const (
	MaxChallengeTitleLength       = 100
	MaxChallengeDescriptionLength = 500
)

// Valid reports whether the status is one of the known values
func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeStatusActive, ChallengeStatusCompleted, ChallengeStatusCancelled:
		return true
	}
	return false
}

// Challenge is a task teams can complete for points
type Challenge struct {
	ID          ChallengeID     `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Points      int64           `json:"points"`
	Status      ChallengeStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Clone returns a copy of the challenge
func (c *Challenge) Clone() *Challenge {
	cp := *c
	return &cp
}

// ChallengeInput carries the fields accepted when creating a challenge
type ChallengeInput struct {
	Title       string
	Description string
	Points      *int64
	Status      ChallengeStatus
}

// ChallengePatch carries optional field updates for a challenge
type ChallengePatch struct {
	Title       *string
	Description *string
	Points      *int64
	Status      *ChallengeStatus
}

// Apply writes the set fields of the patch onto the challenge
func (p ChallengePatch) Apply(c *Challenge) {
	if p.Title != nil {
		c.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		c.Description = strings.TrimSpace(*p.Description)
	}
	if p.Points != nil {
		c.Points = *p.Points
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
}

// Validate checks the challenge against its schema
func (c *Challenge) Validate() error {
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return NewValidationError("title", "challenge title is required")
	}
	if utf8.RuneCountInString(title) > MaxChallengeTitleLength {
		return NewValidationError("title", "title cannot exceed 100 characters")
	}
	if utf8.RuneCountInString(c.Description) > MaxChallengeDescriptionLength {
		return NewValidationError("description", "description cannot exceed 500 characters")
	}
	if c.Points < 0 {
		return NewValidationError("points", "points cannot be negative")
	}
	if !c.Status.Valid() {
		return NewValidationError("status", "status must be one of active, completed, cancelled")
	}
	return nil
}
