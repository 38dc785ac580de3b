package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLowViewsThreshold is the view count below which an article is
// flagged as low-view.
const DefaultLowViewsThreshold = 50

// DailyHoursRecord is one employee's worked hours on one date.
// At most one record exists per (EmployeeID, WorkDate).
type DailyHoursRecord struct {
	EmployeeID uuid.UUID
	WorkDate   time.Time
	Hours      float64
	Status     *string
	EntryTime  *string
	ExitTime   *string
	Notes      *string
	UpdatedAt  time.Time
}

// Key returns the natural key of the record.
func (r DailyHoursRecord) Key() HoursKey {
	return NewHoursKey(r.EmployeeID, r.WorkDate)
}

// HoursKey is the (employee, date) natural key of a DailyHoursRecord.
type HoursKey struct {
	EmployeeID uuid.UUID
	Date       string // YYYY-MM-DD
}

// NewHoursKey builds a key from an employee and any time on the work date.
func NewHoursKey(employeeID uuid.UUID, date time.Time) HoursKey {
	return HoursKey{EmployeeID: employeeID, Date: date.Format(time.DateOnly)}
}

// ArticleRecord holds one published article's engagement stats.
// EmployeeID is nil for orphaned articles.
type ArticleRecord struct {
	ArticleID   string
	EmployeeID  *uuid.UUID
	Title       string
	Views       int64
	PublishedAt *time.Time
	IsLowViews  bool
	UpdatedAt   time.Time
}

// IsLowViews reports whether views fall below threshold.
func IsLowViews(views, threshold int64) bool {
	return views < threshold
}

// MergeArticleViews applies the max-merge rule: stored views never decrease.
func MergeArticleViews(old, incoming int64) int64 {
	return max(old, incoming)
}
