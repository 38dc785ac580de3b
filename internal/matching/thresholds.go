package matching

import (
	"fmt"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// ExactMatch is the score of an exact normalized-name hit.
const ExactMatch = 1.0

const (
	DefaultAutoMatch     = 0.85
	DefaultManual        = 0.75
	DefaultFirstName     = 0.85
	DefaultMaxCandidates = 5
)

// Thresholds tune how aggressively names are matched automatically.
type Thresholds struct {
	AutoMatch     float64
	Manual        float64
	FirstName     float64
	MaxCandidates int
}

// DefaultThresholds returns the production defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AutoMatch:     DefaultAutoMatch,
		Manual:        DefaultManual,
		FirstName:     DefaultFirstName,
		MaxCandidates: DefaultMaxCandidates,
	}
}

// Validate checks that thresholds are ordered and within (0, 1].
func (t Thresholds) Validate() error {
	var errs []domain.FieldError

	check := func(field string, v float64) {
		if v <= 0 || v > ExactMatch {
			errs = append(errs, domain.FieldError{Field: field, Message: fmt.Sprintf("must be in (0, 1], got %v", v)})
		}
	}
	check("auto_match", t.AutoMatch)
	check("manual", t.Manual)
	check("first_name", t.FirstName)

	if t.Manual > t.AutoMatch {
		errs = append(errs, domain.FieldError{Field: "manual", Message: "must not exceed auto_match"})
	}
	if t.MaxCandidates < 1 {
		errs = append(errs, domain.FieldError{Field: "max_candidates", Message: "must be at least 1"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
