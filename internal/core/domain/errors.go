package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Services translate every lower-layer failure into one of
// these before returning; callers match with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
	ErrUnexpected      = errors.New("an unexpected error occurred")
)

// ErrInvalidToken is the single outcome of a failed token validation. Expired,
// forged and malformed tokens are indistinguishable to the caller.
var ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrUnauthenticated)

var (
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrClientNotFound = fmt.Errorf("client %w", ErrNotFound)

	ErrEmailTaken       = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrClientEmailTaken = fmt.Errorf("%w: client email already in use", ErrConflict)
)

// ValidationError reports input that fails domain validation. Its message is
// safe to show to the caller.
type ValidationError struct {
	Msg string
}

// NewValidationError formats a ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrInvalidInput) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
