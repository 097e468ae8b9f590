package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a request rejected before any store access.
	ErrValidation = errors.New("validation failed")
	// ErrIndexUnavailable signals that the index store cannot be reached.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrExecutionFailed signals that the store rejected a query plan.
	ErrExecutionFailed = errors.New("query execution failed")
	// ErrWriteFailed signals that a record could not be written during ingestion.
	ErrWriteFailed = errors.New("write failed")
	// ErrDuplicate signals a record whose identifier is already stored.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNestingTooDeep signals a record nested beyond the normalization depth limit.
	ErrNestingTooDeep = errors.New("nesting too deep")
)

// ValidationError wraps ErrValidation with the offending parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error for a single parameter.
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
