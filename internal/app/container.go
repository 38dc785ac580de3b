package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/article"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/employee"
	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/hours"
	kpirepo "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres/kpi"
	"github.com/heartmarshall/newsdesk-analytics/internal/config"
	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
	"github.com/heartmarshall/newsdesk-analytics/internal/metrics"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/identity"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/ingestion"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/kpi"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/records"
)

// Container holds the wired dependency graph shared by the server and the
// CLIs. Nothing in it is a package-level singleton.
type Container struct {
	Pool      *pgxpool.Pool
	Migrator  *postgres.Migrator
	Employees *employee.Repo
	Tx        *postgres.TxManager

	Identity  *identity.Service
	Directory *identity.Directory
	Ingestion *ingestion.Service
	Records   *records.Service
	KPI       *kpi.Service

	// Metrics is nil when metrics are disabled.
	Metrics *metrics.Registry
}

// NewContainer connects to the database, optionally applies migrations and
// builds every service. The caller owns Close.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	migrator, err := postgres.NewMigrator(pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.Database.MigrateOnStart {
		if err := migrator.Up(ctx); err != nil {
			_ = migrator.Close()
			pool.Close()
			return nil, fmt.Errorf("migrate on start: %w", err)
		}
	}

	c := &Container{
		Pool:      pool,
		Migrator:  migrator,
		Employees: employee.New(pool),
		Tx:        postgres.NewTxManager(pool),
	}

	c.Identity = identity.NewService(logger, c.Employees, c.Tx, matching.NewPolicy(cfg.Matching.Thresholds()))
	c.Directory = identity.NewDirectory(logger, c.Employees)
	hoursRepo, articleRepo := hours.New(pool), article.New(pool)
	c.Ingestion = ingestion.NewService(logger, hoursRepo, articleRepo, c.Tx, c.Identity, cfg.Ingestion)
	c.Records = records.NewService(logger, hoursRepo, articleRepo, c.Employees)
	c.KPI = kpi.NewService(logger, kpirepo.New(pool), cfg.Ingestion.LowViewsThreshold.Int64())

	if cfg.Metrics.Enabled() {
		c.Metrics = metrics.New(cfg.Metrics.Namespace)
		c.Identity.SetMetrics(c.Metrics)
		c.Ingestion.SetMetrics(c.Metrics)
	}

	return c, nil
}

// Close releases the migrator connection and the pool.
func (c *Container) Close() {
	_ = c.Migrator.Close()
	c.Pool.Close()
}
