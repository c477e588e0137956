package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition is returned when a status-gated operation
	// is called from the wrong state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrPersistence wraps a failed store operation. The operation that
	// surfaces it has left no partial effect.
	ErrPersistence = errors.New("persistence failure")

	// ErrPartialPosting reports that one leg of a two-leg posting committed
	// and the other did not. Unreachable when the store provides a single
	// transaction boundary spanning both accounts; surfaced so operators
	// can reconcile manually if a store without that guarantee is wired in.
	ErrPartialPosting = errors.New("partial posting")
)

// FieldError is one invalid or missing input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects input problems for a single request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add records a field problem.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns the error if any field problems were recorded, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
