// Package seeder loads the newsroom employee roster into the registry so that
// uploads match known staff from the first run.
package seeder

import (
	"context"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// EmployeeRepo is the registry contract consumed by the seeder pipeline.
// Implemented by employee.Repo.
type EmployeeRepo interface {
	FindByNormalizedName(ctx context.Context, normalized string) (*domain.Employee, error)
	Create(ctx context.Context, e domain.NewEmployee) (*domain.Employee, error)
	RecordAlias(ctx context.Context, alias domain.Alias) error
}

// TxManager runs fn in a single transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
