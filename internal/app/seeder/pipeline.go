package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/newsdesk-analytics/internal/app/seeder/roster"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Result holds the outcome of one roster run.
type Result struct {
	Created  int
	Existing int
	Aliases  int
	Skipped  int
	Errors   []string
	Duration time.Duration
}

// Pipeline loads a roster into the employee registry.
type Pipeline struct {
	log  *slog.Logger
	repo EmployeeRepo
	tx   TxManager
	cfg  Config
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, repo EmployeeRepo, tx TxManager, cfg Config) *Pipeline {
	return &Pipeline{
		log:  log.With("service", "seeder"),
		repo: repo,
		tx:   tx,
		cfg:  cfg,
	}
}

// Run reads the configured roster file and seeds it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.cfg.RosterPath == "" {
		return nil, errors.New("roster path not configured")
	}
	f, err := os.Open(p.cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	return p.Seed(ctx, f)
}

// Seed parses r and seeds every entry. Each entry commits on its own, so one
// bad line never rolls back the rest. Re-running a roster is idempotent.
func (p *Pipeline) Seed(ctx context.Context, r io.Reader) (*Result, error) {
	start := time.Now()

	entries, parseErrs, err := roster.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	result := &Result{}
	for _, e := range parseErrs {
		result.Errors = append(result.Errors, e.Error())
	}
	p.log.InfoContext(ctx, "roster parsed",
		slog.Int("entries", len(entries)),
		slog.Int("parse_errors", len(parseErrs)),
	)

	if p.cfg.DryRun {
		result.Skipped = len(entries)
		result.Duration = time.Since(start)
		return result, nil
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		created, aliases, err := p.seedEntry(ctx, e)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d (%s): %v", e.Row, e.CanonicalName, err))
			p.log.WarnContext(ctx, "roster entry failed",
				slog.Int("row", e.Row),
				slog.String("name", e.CanonicalName),
				slog.String("error", err.Error()),
			)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
		result.Aliases += aliases
	}

	result.Duration = time.Since(start)
	p.log.InfoContext(ctx, "roster seeded",
		slog.Int("created", result.Created),
		slog.Int("existing", result.Existing),
		slog.Int("aliases", result.Aliases),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

// seedEntry finds or creates the employee and records the entry's aliases in
// one transaction.
func (p *Pipeline) seedEntry(ctx context.Context, e roster.Entry) (bool, int, error) {
	created, aliases, err := p.seedOnce(ctx, e)
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		// Created concurrently; the retry takes the find path.
		return p.seedOnce(ctx, e)
	}
	return created, aliases, err
}

func (p *Pipeline) seedOnce(ctx context.Context, e roster.Entry) (created bool, aliases int, err error) {
	err = p.tx.RunInTx(ctx, func(txCtx context.Context) error {
		created, aliases = false, 0

		emp, err := p.repo.FindByNormalizedName(txCtx, domain.NormalizeName(e.CanonicalName))
		switch {
		case errors.Is(err, domain.ErrNotFound):
			ne := domain.NewEmployeeFromName(e.CanonicalName)
			ne.EmployeeNumber = e.EmployeeNumber
			emp, err = p.repo.Create(txCtx, ne)
			if err != nil {
				return fmt.Errorf("create employee: %w", err)
			}
			created = true
		case err != nil:
			return fmt.Errorf("find employee: %w", err)
		}

		names := append([]string{emp.CanonicalName}, e.Aliases...)
		for _, name := range names {
			if err := p.repo.RecordAlias(txCtx, rosterAlias(name, emp)); err != nil {
				return fmt.Errorf("alias %q: %w", name, err)
			}
			aliases++
		}
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return created, aliases, nil
}

func rosterAlias(name string, emp *domain.Employee) domain.Alias {
	now := time.Now()
	return domain.Alias{
		EmployeeID:      emp.ID,
		Alias:           name,
		AliasNormalized: domain.NormalizeName(name),
		Source:          domain.SourceRoster,
		ConfirmedByUser: true,
		ConfirmedAt:     &now,
	}
}
