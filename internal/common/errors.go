// Package common defines constants and sentinel errors shared by the
// notehub server packages. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorValidation      = errors.New("validation error")
	ErrorUpstreamStorage = errors.New("upstream storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError describes rejected input. Fields lists the offending
// field names (JSON spelling) when the failure is field-specific.
type ValidationError struct {
	Fields  []string
	Message string
}

// NewValidationError builds a ValidationError with a message and optional fields.
func NewValidationError(msg string, fields ...string) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// MissingFieldsError reports required fields that were not supplied.
func MissingFieldsError(fields []string) *ValidationError {
	return &ValidationError{
		Fields:  fields,
		Message: fmt.Sprintf("missing required fields: %s", strings.Join(fields, ", ")),
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrorValidation) match any *ValidationError.
func (e *ValidationError) Unwrap() error {
	return ErrorValidation
}
