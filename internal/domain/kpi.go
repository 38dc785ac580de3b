package domain

import (
	"time"

	"github.com/google/uuid"
)

// Period is an inclusive range of calendar dates.
type Period struct {
	From time.Time
	To   time.Time
}

// Validate checks that both ends are set and From is not after To.
func (p Period) Validate() error {
	var errs []FieldError
	if p.From.IsZero() {
		errs = append(errs, FieldError{Field: "from", Message: "required"})
	}
	if p.To.IsZero() {
		errs = append(errs, FieldError{Field: "to", Message: "required"})
	}
	if len(errs) == 0 && p.From.After(p.To) {
		errs = append(errs, FieldError{Field: "from", Message: "must not be after to"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// EmployeeStats are one employee's raw aggregates over a period.
// Articles and TotalViews exclude low-view articles.
type EmployeeStats struct {
	EmployeeID    uuid.UUID `db:"employee_id"`
	CanonicalName string    `db:"canonical_name"`
	TotalHours    float64   `db:"total_hours"`
	DaysWorked    int64     `db:"days_worked"`
	Articles      int64     `db:"article_count"`
	LowViewCount  int64     `db:"low_view_count"`
	TotalViews    int64     `db:"total_views"`
}

// PeriodTotals are newsroom-wide aggregates over a period.
type PeriodTotals struct {
	TotalHours     float64 `db:"total_hours" json:"totalHours"`
	TotalArticles  int64   `db:"total_articles" json:"totalArticles"`
	OrphanArticles int64   `db:"orphan_articles" json:"orphanArticles"`
	TotalViews     int64   `db:"total_views" json:"totalViews"`
}
