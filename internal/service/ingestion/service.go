// Package ingestion writes resolved upload rows into storage with the
// per-source merge rules.
package ingestion

import (
	"context"
	"log/slog"

	"github.com/heartmarshall/newsdesk-analytics/internal/config"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/identity"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type hoursRepo interface {
	// ExistingHours returns the stored hours for those keys that exist.
	ExistingHours(ctx context.Context, keys []domain.HoursKey) (map[domain.HoursKey]float64, error)
	UpsertBatch(ctx context.Context, records []domain.DailyHoursRecord) error
}

type articleRepo interface {
	// ExistingViews returns the stored view counts for those ids that exist.
	ExistingViews(ctx context.Context, articleIDs []string) (map[string]int64, error)
	UpsertBatch(ctx context.Context, records []domain.ArticleRecord, lowViewsThreshold int64) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type identityResolver interface {
	ResolveBatch(ctx context.Context, rows []domain.ParsedRow, source domain.Source, resolver resolution.Resolver) (*identity.BatchResult, error)
}

type rowsRecorder interface {
	RowsProcessed(source domain.Source, outcome string, n int)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the ingestion upsert engine.
type Service struct {
	log      *slog.Logger
	hours    hoursRepo
	articles articleRepo
	tx       txManager
	identity identityResolver
	metrics  rowsRecorder
	cfg      config.IngestionConfig
}

// NewService creates a new ingestion service.
func NewService(
	logger *slog.Logger,
	hours hoursRepo,
	articles articleRepo,
	tx txManager,
	identity identityResolver,
	cfg config.IngestionConfig,
) *Service {
	return &Service{
		log:      logger.With("service", "ingestion"),
		hours:    hours,
		articles: articles,
		tx:       tx,
		identity: identity,
		metrics:  nopRecorder{},
		cfg:      cfg,
	}
}

// SetMetrics injects the optional metrics recorder.
func (s *Service) SetMetrics(m rowsRecorder) {
	if m != nil {
		s.metrics = m
	}
}

type nopRecorder struct{}

func (nopRecorder) RowsProcessed(domain.Source, string, int) {}

func (s *Service) chunkSize() int {
	if s.cfg.ChunkSize <= 0 {
		return 500
	}
	return s.cfg.ChunkSize
}

func (s *Service) maxDailyHours() float64 {
	if s.cfg.MaxDailyHours <= 0 {
		return 24
	}
	return s.cfg.MaxDailyHours
}
