// Package apperr defines the error kinds shared by every layer. Services
// wrap these sentinels with context using github.com/pkg/errors; the HTTP
// error handler classifies them with errors.Is and picks a status code.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound: a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: uniqueness violation or a transition from a terminal state.
	ErrConflict = errors.New("conflict")
	// ErrExpired: a link or refresh token outlived its TTL. The row is gone.
	ErrExpired = errors.New("expired")
	// ErrValidationMismatch: a cross-field check failed.
	ErrValidationMismatch = errors.New("validation mismatch")
	// ErrInvalidArgument: a single argument is malformed.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized: the caller lacks the role or ownership for the action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnauthenticated: missing session or bad credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInternal: a dependency (mail, persistence) failed.
	ErrInternal = errors.New("internal error")
)

// Status maps err to the HTTP status code of its kind. Unclassified errors
// are internal.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrExpired),
		errors.Is(err, ErrValidationMismatch),
		errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// Internal marks err as a dependency failure while keeping it in the chain.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &internalError{cause: errors.Wrap(err, msg)}
}

type internalError struct{ cause error }

func (e *internalError) Error() string        { return e.cause.Error() }
func (e *internalError) Unwrap() error        { return e.cause }
func (e *internalError) Is(target error) bool { return target == ErrInternal }
