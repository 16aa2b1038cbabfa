package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks records or arguments that violate an invariant.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a referenced job or profile that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrCollaboratorUnavailable marks a failed storage, identity or AI call.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrForbidden marks a caller acting on something it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated marks a caller that could not be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// Invalid returns an ErrInvalidInput error with the formatted details.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Unavailable wraps err as a collaborator failure for the named operation.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCollaboratorUnavailable, err)
}
