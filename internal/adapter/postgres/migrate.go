package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/newsdesk-analytics/migrations"
)

// ErrPendingMigrations is reported by Migrator.Ping while the schema lags
// behind the embedded migrations.
var ErrPendingMigrations = errors.New("pending migrations")

// Migrator runs the embedded goose migrations. goose needs *sql.DB, so the
// migrator works on a database/sql view of the pool.
type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
	log      *slog.Logger
}

// NewMigrator creates a migrator sharing connections with pool.
func NewMigrator(pool *pgxpool.Pool, log *slog.Logger) (*Migrator, error) {
	return newMigrator(stdlib.OpenDBFromPool(pool), log)
}

func newMigrator(db *sql.DB, log *slog.Logger) (*Migrator, error) {
	// NewProvider handles $$-delimited function bodies, unlike legacy goose.Up.
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return &Migrator{db: db, provider: provider, log: log}, nil
}

// Close releases the database/sql handle. The pool stays open.
func (m *Migrator) Close() error {
	return m.db.Close()
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	m.logResults(ctx, "migration applied", results)
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	result, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("goose down: %w", err)
	}
	m.logResults(ctx, "migration rolled back", []*goose.MigrationResult{result})
	return nil
}

// Version returns the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}

// Status reports every known migration and whether it is applied.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	st, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	return st, nil
}

// Ping fails when migrations are pending, so readiness tracks the schema.
func (m *Migrator) Ping(ctx context.Context) error {
	pending, err := m.provider.HasPending(ctx)
	if err != nil {
		return fmt.Errorf("goose has pending: %w", err)
	}
	if pending {
		return ErrPendingMigrations
	}
	return nil
}

func (m *Migrator) logResults(ctx context.Context, msg string, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		m.log.InfoContext(ctx, msg,
			slog.Int64("version", r.Source.Version),
			slog.String("file", r.Source.Path),
			slog.Duration("took", r.Duration),
		)
	}
}

// Migrate applies all pending migrations to the database at dsn using a
// short-lived connection.
func Migrate(ctx context.Context, dsn string, log *slog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	m, err := newMigrator(db, log)
	if err != nil {
		return err
	}
	return m.Up(ctx)
}
