package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds every operation can surface. Handlers
// translate these to HTTP statuses; services never return raw storage errors
// to the boundary.
var (
	// ErrDenied is returned on a role mismatch or an out-of-subtree access.
	ErrDenied = errors.New("access denied")

	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAssigned is returned when hierarchy resolution finds no upstream
	// profile for an account. It is handled explicitly, never defaulted.
	ErrNotAssigned = errors.New("not assigned in hierarchy")
)

// ValidationError carries per-field messages for a rejected submission. The
// submission is all-or-nothing: when any field fails, no field is applied.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// Validation builds a single-message validation error.
func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ValidationFields builds a validation error with per-field messages.
func ValidationFields(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// AsValidation reports whether err is a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
