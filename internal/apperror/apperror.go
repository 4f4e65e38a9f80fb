package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the application's error taxonomy. The HTTP layer maps
// each sentinel to a status code; everything else becomes a 500.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// AppError pairs a taxonomy sentinel with a human-readable message safe to
// return to the client. Check the category with errors.Is(err, ErrX).
type AppError struct {
	Err     error  // taxonomy sentinel
	Message string // human-readable, client-safe message
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ValidationFailed reports malformed or out-of-range input (HTTP 400).
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized reports a missing, invalid, or expired session (HTTP 401).
// Keep the message generic — never disclose whether an account exists.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden reports a CSRF or Origin check failure (HTTP 403).
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// NotFound reports a missing resource (HTTP 404).
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Conflict reports a state conflict the caller must resolve (HTTP 409):
// duplicate email, already-active timer, overlapping interval.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}
