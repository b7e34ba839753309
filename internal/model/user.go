package model

import "time"

// UserID uniquely identifies a user account
type UserID string

// Role is the access level of a user
type Role string

const (
	// RoleNone is the level required by read-only operations
	RoleNone  Role = ""
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// rank orders roles so that a higher rank satisfies every lower requirement
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// Satisfies reports whether r meets the required role
func (r Role) Satisfies(required Role) bool {
	return r.rank() >= required.rank()
}

// Valid reports whether the role can be assigned to an account
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account that can authenticate against the API
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"` // stored lowercased, unique
	PasswordHash string    `json:"password_hash"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is a resolved caller: who they are and what they may do
type Identity struct {
	UserID   UserID
	Username string
	Role     Role
}

// Anonymous is the identity of a caller without a usable credential
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no subject
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}
