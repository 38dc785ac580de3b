// Package records reads stored hours and articles back out.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type hoursReader interface {
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]domain.DailyHoursRecord, error)
}

type articleReader interface {
	GetByID(ctx context.Context, articleID string) (*domain.ArticleRecord, error)
}

type employeeReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Employee, error)
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// DayView is one stored day of hours.
type DayView struct {
	Date      string    `json:"date"`
	Hours     float64   `json:"hours"`
	Status    *string   `json:"status,omitempty"`
	EntryTime *string   `json:"entryTime,omitempty"`
	ExitTime  *string   `json:"exitTime,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EmployeeHours is an employee's hours over a period.
type EmployeeHours struct {
	EmployeeID    uuid.UUID `json:"employeeId"`
	CanonicalName string    `json:"canonicalName"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	TotalHours    float64   `json:"totalHours"`
	Days          []DayView `json:"days"`
}

// ArticleView is one stored article.
type ArticleView struct {
	ArticleID   string     `json:"articleId"`
	EmployeeID  *uuid.UUID `json:"employeeId,omitempty"`
	Title       string     `json:"title"`
	Views       int64      `json:"views"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	IsLowViews  bool       `json:"isLowViews"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service serves stored records.
type Service struct {
	log       *slog.Logger
	hours     hoursReader
	articles  articleReader
	employees employeeReader
}

// NewService creates a new records service.
func NewService(logger *slog.Logger, hours hoursReader, articles articleReader, employees employeeReader) *Service {
	return &Service{
		log:       logger.With("service", "records"),
		hours:     hours,
		articles:  articles,
		employees: employees,
	}
}

// EmployeeHours returns the employee's stored days within p, oldest first.
func (s *Service) EmployeeHours(ctx context.Context, employeeID uuid.UUID, p domain.Period) (*EmployeeHours, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	found, err := s.employees.GetByIDs(ctx, []uuid.UUID{employeeID})
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("employee %s: %w", employeeID, domain.ErrNotFound)
	}

	days, err := s.hours.ListByEmployee(ctx, employeeID, p.From, p.To)
	if err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}

	out := &EmployeeHours{
		EmployeeID:    employeeID,
		CanonicalName: found[0].CanonicalName,
		From:          p.From.Format(time.DateOnly),
		To:            p.To.Format(time.DateOnly),
		Days:          make([]DayView, len(days)),
	}
	for i, d := range days {
		out.TotalHours += d.Hours
		out.Days[i] = DayView{
			Date:      d.WorkDate.Format(time.DateOnly),
			Hours:     d.Hours,
			Status:    d.Status,
			EntryTime: d.EntryTime,
			ExitTime:  d.ExitTime,
			Notes:     d.Notes,
			UpdatedAt: d.UpdatedAt,
		}
	}
	return out, nil
}

// Article returns one stored article.
func (s *Service) Article(ctx context.Context, articleID string) (*ArticleView, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, domain.NewValidationError("article_id", "required")
	}

	a, err := s.articles.GetByID(ctx, articleID)
	if err != nil {
		return nil, err
	}
	return &ArticleView{
		ArticleID:   a.ArticleID,
		EmployeeID:  a.EmployeeID,
		Title:       a.Title,
		Views:       a.Views,
		PublishedAt: a.PublishedAt,
		IsLowViews:  a.IsLowViews,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}
