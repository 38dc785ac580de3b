package ingestion

import (
	"context"
	"fmt"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// Import resolves the names in rows, asking resolver about conflicts, and
// writes the rows. Names left unresolved skip their rows with a receipt error
// that carries the reason.
func (s *Service) Import(
	ctx context.Context,
	rows []domain.ParsedRow,
	source domain.Source,
	resolver resolution.Resolver,
) (*ImportResult, error) {
	if !source.IsValid() {
		return nil, domain.NewValidationError("source", "must be hours or articles")
	}

	resolved, err := s.identity.ResolveBatch(ctx, rows, source, resolver)
	if err != nil {
		return nil, fmt.Errorf("resolve names: %w", err)
	}

	receipt, err := s.upsert(ctx, resolved.EmployeeIDs(), resolved.Unresolved, rows, source)
	if receipt == nil {
		return nil, fmt.Errorf("upsert: %w", err)
	}

	result := &ImportResult{
		Receipt:   receipt,
		Created:   resolved.Created,
		Cancelled: resolved.Cancelled,
	}
	if err != nil {
		return result, fmt.Errorf("upsert: %w", err)
	}
	return result, nil
}
