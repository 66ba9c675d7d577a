package article

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField marks a record that lacks a required key.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField marks a record whose field has an unusable value.
	ErrInvalidField = errors.New("invalid field")
)

// ValidationError reports why a single record was dropped. It is record-local:
// sibling records in the same file are unaffected.
type ValidationError struct {
	ID     string // record id, or UnknownID
	Field  string
	Reason error // ErrMissingField or ErrInvalidField
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("article %s: %v %q", e.ID, e.Reason, e.Field)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes the reason so callers can use errors.Is.
func (e *ValidationError) Unwrap() error { return e.Reason }

func missing(id, field string) *ValidationError {
	return &ValidationError{ID: id, Field: field, Reason: ErrMissingField}
}

func invalid(id, field, format string, a ...any) *ValidationError {
	return &ValidationError{ID: id, Field: field, Reason: ErrInvalidField, Detail: fmt.Sprintf(format, a...)}
}
