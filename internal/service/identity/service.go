// Package identity binds raw employee names from an upload to canonical
// employees, learning new aliases as it goes.
package identity

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type employeeRepo interface {
	ListAliases(ctx context.Context) ([]domain.AliasEntry, error)
	FindByNormalizedName(ctx context.Context, normalized string) (*domain.Employee, error)
	Create(ctx context.Context, e domain.NewEmployee) (*domain.Employee, error)
	RecordAlias(ctx context.Context, alias domain.Alias) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type resolutionRecorder interface {
	NameClassified(source domain.Source, tier string)
	EmployeeCreated(source domain.Source)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements batch identity resolution.
type Service struct {
	log       *slog.Logger
	employees employeeRepo
	tx        txManager
	policy    *matching.Policy
	metrics   resolutionRecorder
}

// NewService creates a new identity service.
func NewService(
	logger *slog.Logger,
	employees employeeRepo,
	tx txManager,
	policy *matching.Policy,
) *Service {
	return &Service{
		log:       logger.With("service", "identity"),
		employees: employees,
		tx:        tx,
		policy:    policy,
		metrics:   nopRecorder{},
	}
}

// SetMetrics injects the optional metrics recorder.
func (s *Service) SetMetrics(m resolutionRecorder) {
	if m != nil {
		s.metrics = m
	}
}

type nopRecorder struct{}

func (nopRecorder) NameClassified(domain.Source, string) {}
func (nopRecorder) EmployeeCreated(domain.Source)        {}
