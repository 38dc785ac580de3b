package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type employeeLister interface {
	List(ctx context.Context, limit, offset int) ([]domain.Employee, int, error)
	AliasesByEmployeeIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Alias, error)
}

// AliasView is one known spelling in a registry listing.
type AliasView struct {
	Alias           string        `json:"alias"`
	Source          domain.Source `json:"source"`
	ConfirmedByUser bool          `json:"confirmedByUser"`
}

// EmployeeView is an employee with every spelling learned for it.
type EmployeeView struct {
	ID             uuid.UUID   `json:"id"`
	CanonicalName  string      `json:"canonicalName"`
	EmployeeNumber *string     `json:"employeeNumber,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	Aliases        []AliasView `json:"aliases"`
}

// EmployeePage is one page of the registry.
type EmployeePage struct {
	Employees []EmployeeView `json:"employees"`
	Total     int            `json:"total"`
	Limit     int            `json:"limit"`
	Offset    int            `json:"offset"`
}

// Directory lists the employee registry.
type Directory struct {
	log       *slog.Logger
	employees employeeLister
}

// NewDirectory creates a registry lister.
func NewDirectory(logger *slog.Logger, employees employeeLister) *Directory {
	return &Directory{
		log:       logger.With("service", "directory"),
		employees: employees,
	}
}

// List returns a page of employees with their aliases. limit is clamped to
// [1, 500] and defaults to 50.
func (d *Directory) List(ctx context.Context, limit, offset int) (*EmployeePage, error) {
	if offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}
	switch {
	case limit <= 0:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}

	employees, total, err := d.employees.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	ids := make([]uuid.UUID, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	aliases, err := d.employees.AliasesByEmployeeIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}

	page := &EmployeePage{
		Employees: make([]EmployeeView, len(employees)),
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}
	for i, e := range employees {
		view := EmployeeView{
			ID:             e.ID,
			CanonicalName:  e.CanonicalName,
			EmployeeNumber: e.EmployeeNumber,
			CreatedAt:      e.CreatedAt,
			Aliases:        make([]AliasView, 0, len(aliases[e.ID])),
		}
		for _, a := range aliases[e.ID] {
			view.Aliases = append(view.Aliases, AliasView{Alias: a.Alias, Source: a.Source, ConfirmedByUser: a.ConfirmedByUser})
		}
		page.Employees[i] = view
	}
	return page, nil
}
