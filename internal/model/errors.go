package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Access errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")

	// Team errors
	ErrTeamNotFound  = errors.New("team not found")
	ErrDuplicateName = errors.New("a team with this name already exists")

	// Challenge errors
	ErrChallengeNotFound = errors.New("challenge not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")

	// Storage errors
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a schema or range violation on a single field
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
