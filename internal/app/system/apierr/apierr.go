// internal/app/system/apierr/apierr.go

// Package apierr defines the error taxonomy shared by the coordinator,
// the stores, and the HTTP layer. Every failure a caller can see carries
// one stable kind plus a human-readable message; kinds are matched with
// errors.Is so wrapping is safe anywhere along the chain.
package apierr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. NotFound and Conflict stay distinct: a claim against
// a missing item and a claim that lost the race must never be
// conflated.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("upstream unavailable")
)

// Error pairs a sentinel kind with a message fit for an API response.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation reports a missing or malformed field. Not retried.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent item or user.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// Forbidden reports an authenticated caller without entitlement.
func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a state precondition that no longer holds, including
// a lost claim race. Callers must re-fetch before retrying.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a store or channel failure. The cause is preserved
// for logs but the API message stays generic.
func Unavailable(cause error, message string) *Error {
	return &Error{Kind: fmt.Errorf("%w: %w", ErrUnavailable, cause), Message: message}
}

// Code returns the machine-readable kind string used in API bodies.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}
