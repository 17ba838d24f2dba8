// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these; the HTTP layer maps them to status codes.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for the non-validation failure classes.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// NotFound wraps ErrNotFound with the missing resource kind.
func NotFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

// Conflict wraps ErrConflict. Unique-constraint races (duplicate invoice
// numbers, duplicate id cards) surface through this so callers can retry.
func Conflict(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrConflict)
}

// Forbidden wraps ErrForbidden naming the missing role or permission.
func Forbidden(missing string) error {
	return fmt.Errorf("missing %s: %w", missing, ErrForbidden)
}

// ValidationError carries per-field violations. Fields map field name to a
// short machine-readable reason (e.g. "required", "must_be_13_digits").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validation builds a ValidationError from a field violation map.
func Validation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Invalid is shorthand for a single-field violation.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// AsValidation extracts a *ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
