package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("source", "required")

	if got := err.Error(); got != "validation: source: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := NewValidationErrors([]FieldError{
		{Field: "rows", Message: "required"},
		{Field: "source", Message: "unknown source"},
	})

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrValidation, ErrConflict,
		ErrDuplicateIdentity, ErrUnresolvedName, ErrAllChunksFailed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestUnresolvedNameError(t *testing.T) {
	t.Parallel()

	err := error(&UnresolvedNameError{Name: "Dana Levi", Reason: "resolution cancelled"})

	if !errors.Is(err, ErrUnresolvedName) {
		t.Fatal("errors.Is(err, ErrUnresolvedName) = false")
	}
	want := `name "Dana Levi" is not bound to an employee: resolution cancelled`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	var une *UnresolvedNameError
	if !errors.As(fmt.Errorf("wrap: %w", err), &une) || une.Name != "Dana Levi" {
		t.Errorf("errors.As failed or wrong name: %+v", une)
	}
}

func TestBatchWriteError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &BatchWriteError{Chunk: 2, Rows: 500, Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("BatchWriteError should unwrap to its cause")
	}
	if got := err.Error(); got != "chunk 2 (500 rows): connection reset" {
		t.Errorf("Error() = %q", got)
	}
}
