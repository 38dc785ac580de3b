// Package resolution implements the human-in-the-loop protocol for names the
// matching policy could not bind on its own.
package resolution

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
)

// Confidence is how close the best candidate came to the input name.
type Confidence string

const (
	// ConfidenceMedium means at least one candidate passed the manual threshold.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow means nothing matched; the name is likely a new person.
	ConfidenceLow Confidence = "low"
)

// Conflict is an input name waiting for a human decision.
type Conflict struct {
	InputName  string               `json:"inputName"`
	Candidates []matching.Candidate `json:"candidates"`
	Confidence Confidence           `json:"confidence"`
	RowNumbers []int                `json:"rowNumbers"`
}

// HasCandidate reports whether id is one of the conflict's candidates.
func (c Conflict) HasCandidate(id uuid.UUID) bool {
	for _, cand := range c.Candidates {
		if cand.EmployeeID == id {
			return true
		}
	}
	return false
}

// Action is what a human decided for a conflict.
type Action string

const (
	ActionMatch     Action = "match"
	ActionCreateNew Action = "create_new"
)

// Decision binds a conflict's input name to an existing employee or asks for a
// new one.
type Decision struct {
	InputName  string    `json:"inputName"`
	Action     Action    `json:"action"`
	EmployeeID uuid.UUID `json:"employeeId,omitzero"`
}

// Validate checks the decision in isolation.
func (d Decision) Validate() error {
	var errs []domain.FieldError
	if d.InputName == "" {
		errs = append(errs, domain.FieldError{Field: "input_name", Message: "required"})
	}
	switch d.Action {
	case ActionMatch:
		if d.EmployeeID == uuid.Nil {
			errs = append(errs, domain.FieldError{Field: "employee_id", Message: "required for match"})
		}
	case ActionCreateNew:
	default:
		errs = append(errs, domain.FieldError{Field: "action", Message: "must be match or create_new"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// Match returns a decision binding name to employeeID.
func Match(name string, employeeID uuid.UUID) Decision {
	return Decision{InputName: name, Action: ActionMatch, EmployeeID: employeeID}
}

// CreateNew returns a decision that mints a new employee for name.
func CreateNew(name string) Decision {
	return Decision{InputName: name, Action: ActionCreateNew}
}

// ErrCancelled is returned by a Resolver when the user abandons resolution.
var ErrCancelled = errors.New("resolution cancelled")

// Resolver obtains decisions for a set of conflicts.
type Resolver interface {
	Resolve(ctx context.Context, conflicts []Conflict) ([]Decision, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, conflicts []Conflict) ([]Decision, error)

func (f ResolverFunc) Resolve(ctx context.Context, conflicts []Conflict) ([]Decision, error) {
	return f(ctx, conflicts)
}
