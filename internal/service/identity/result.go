package identity

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// AutoMatch is a name bound without human input.
//
// A follower is a spelling that matched another new name from the same batch.
// It has no EmployeeID yet; Leader names the spelling whose employee it will
// share once the leader is resolved.
type AutoMatch struct {
	InputName  string    `json:"inputName"`
	EmployeeID uuid.UUID `json:"employeeId,omitzero"`
	MatchType  string    `json:"matchType"`
	Score      float64   `json:"similarityScore"`
	Leader     string    `json:"leader,omitempty"`
	RowNumbers []int     `json:"rowNumbers,omitempty"`
}

// IsFollower reports whether the match waits on a leader.
func (m AutoMatch) IsFollower() bool { return m.Leader != "" }

// NameError is a per-name failure that did not abort the batch.
type NameError struct {
	InputName string `json:"inputName"`
	Reason    string `json:"reason"`
}

// Analysis is the output of the analysis phase.
type Analysis struct {
	AutoMatched      []AutoMatch           `json:"autoMatched"`
	NeedsResolution  []resolution.Conflict `json:"needsResolution"`
	TotalUniqueNames int                   `json:"totalUniqueNames"`
	Errors           []NameError           `json:"errors,omitempty"`
}

// Binding is the employee a name resolved to.
type Binding struct {
	EmployeeID      uuid.UUID `json:"employeeId"`
	ConfirmedByUser bool      `json:"confirmedByUser"`
}

// ExecuteInput carries the decisions and auto matches to commit.
type ExecuteInput struct {
	Source      domain.Source
	Decisions   []resolution.Decision
	AutoMatched []AutoMatch
}

// Validate checks the input.
func (i ExecuteInput) Validate() error {
	var errs []domain.FieldError
	if !i.Source.IsValid() {
		errs = append(errs, domain.FieldError{Field: "source", Message: "must be hours or articles"})
	}
	seen := make(map[string]bool, len(i.Decisions))
	for _, d := range i.Decisions {
		if err := d.Validate(); err != nil {
			errs = append(errs, domain.FieldError{Field: "decisions", Message: err.Error()})
			continue
		}
		if seen[d.InputName] {
			errs = append(errs, domain.FieldError{Field: "decisions", Message: "duplicate decision for " + d.InputName})
		}
		seen[d.InputName] = true
	}
	for _, m := range i.AutoMatched {
		if m.InputName == "" || (m.EmployeeID == uuid.Nil && m.Leader == "") {
			errs = append(errs, domain.FieldError{Field: "auto_matched", Message: "needs input name and employee id or leader"})
		}
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExecuteResult maps every committed input name to its employee.
type ExecuteResult struct {
	Resolved map[string]Binding `json:"resolved"`
	Created  int                `json:"created"`
	Errors   []NameError        `json:"errors,omitempty"`
}

// BatchResult is the outcome of ResolveBatch.
type BatchResult struct {
	Analysis   *Analysis
	Resolved   map[string]Binding
	Created    int
	Cancelled  bool
	Unresolved []*domain.UnresolvedNameError
}

// EmployeeIDs flattens Resolved into name → employee id.
func (r *BatchResult) EmployeeIDs() map[string]uuid.UUID {
	return bindingIDs(r.Resolved)
}

// EmployeeIDs flattens Resolved into name → employee id.
func (r *ExecuteResult) EmployeeIDs() map[string]uuid.UUID {
	return bindingIDs(r.Resolved)
}

func bindingIDs(in map[string]Binding) map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, len(in))
	for name, b := range in {
		out[name] = b.EmployeeID
	}
	return out
}
