package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// ResolveBatch runs analysis, asks resolver about the conflicts and commits
// the result. A nil resolver or a cancelled resolution leaves the conflict
// names unbound; they are reported in Unresolved.
func (s *Service) ResolveBatch(
	ctx context.Context,
	rows []domain.ParsedRow,
	source domain.Source,
	resolver resolution.Resolver,
) (*BatchResult, error) {
	analysis, err := s.Analyze(ctx, rows, source)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	out := &BatchResult{Analysis: analysis}

	var decisions []resolution.Decision
	if len(analysis.NeedsResolution) > 0 && resolver != nil {
		decisions, err = resolver.Resolve(ctx, analysis.NeedsResolution)
		switch {
		case errors.Is(err, resolution.ErrCancelled):
			out.Cancelled = true
			decisions = nil
			s.log.InfoContext(ctx, "resolution cancelled; conflicts stay unbound",
				slog.Int("conflicts", len(analysis.NeedsResolution)))
		case err != nil:
			return nil, fmt.Errorf("resolve conflicts: %w", err)
		}
	}

	executed, err := s.Execute(ctx, ExecuteInput{
		Source:      source,
		Decisions:   decisions,
		AutoMatched: analysis.AutoMatched,
	})
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	out.Resolved = executed.Resolved
	out.Created = executed.Created

	reasons := make(map[string]string)
	for _, e := range analysis.Errors {
		reasons[e.InputName] = e.Reason
	}
	for _, e := range executed.Errors {
		reasons[e.InputName] = e.Reason
	}

	for _, occ := range domain.DistinctNames(rows) {
		if _, ok := out.Resolved[occ.Name]; ok {
			continue
		}
		reason := reasons[occ.Name]
		if reason == "" && out.Cancelled {
			reason = "resolution cancelled"
		}
		out.Unresolved = append(out.Unresolved, &domain.UnresolvedNameError{Name: occ.Name, Reason: reason})
	}

	return out, nil
}
