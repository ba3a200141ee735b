package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds the store wraps with %w so callers can tell a missing record
// from a violated constraint without string matching.
var (
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrIntegrity marks an operation rejected to protect stored data:
	// duplicate keys, foreign-key violations, deleting equipment that has
	// inspection history.
	ErrIntegrity = errors.New("integrity constraint violated")
)

// ValidationError collects input problems found before any write is
// attempted. The operation it describes was never started.
type ValidationError struct {
	Problems []string
}

// NewValidationError builds a ValidationError from the given problems.
func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "invalid input"
	case 1:
		return e.Problems[0]
	default:
		return fmt.Sprintf("%d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
	}
}

// AsValidation unwraps err into a ValidationError, or nil if it is not one.
func AsValidation(err error) *ValidationError {
	var v *ValidationError
	if errors.As(err, &v) {
		return v
	}
	return nil
}
