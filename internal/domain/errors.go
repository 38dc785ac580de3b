package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrDuplicateIdentity is returned by the employee registry when the
	// normalized name of a new employee is already taken.
	ErrDuplicateIdentity = errors.New("duplicate identity")

	// ErrUnresolvedName marks a name that never received an employee binding.
	ErrUnresolvedName = errors.New("unresolved name")

	// ErrAllChunksFailed is returned by an upsert when no chunk was written.
	ErrAllChunksFailed = errors.New("all chunks failed")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// UnresolvedNameError reports a name whose rows cannot be written because no
// employee is bound to it.
type UnresolvedNameError struct {
	Name   string
	Reason string
}

func (e *UnresolvedNameError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("name %q is not bound to an employee", e.Name)
	}
	return fmt.Sprintf("name %q is not bound to an employee: %s", e.Name, e.Reason)
}

func (e *UnresolvedNameError) Unwrap() error { return ErrUnresolvedName }

// BatchWriteError reports a failed chunk of a batched upsert.
type BatchWriteError struct {
	Chunk int
	Rows  int
	Err   error
}

func (e *BatchWriteError) Error() string {
	return fmt.Sprintf("chunk %d (%d rows): %v", e.Chunk, e.Rows, e.Err)
}

func (e *BatchWriteError) Unwrap() error { return e.Err }

// ParseRowError describes an input row that could not be parsed or written.
type ParseRowError struct {
	Row     int
	Message string
}

func (e *ParseRowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}
