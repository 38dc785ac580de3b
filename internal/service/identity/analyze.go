package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// Analyze classifies every distinct name in rows. Auto matches against
// existing employees are persisted as unconfirmed aliases right away; the rest
// are returned as conflicts for a human.
//
// Names are processed in first-seen order against one snapshot that learns as
// it goes, so a second spelling of a person seen earlier in the file resolves
// to the same identity instead of raising another conflict.
func (s *Service) Analyze(ctx context.Context, rows []domain.ParsedRow, source domain.Source) (*Analysis, error) {
	if !source.IsValid() {
		return nil, domain.NewValidationError("source", "must be hours or articles")
	}

	names := domain.DistinctNames(rows)
	result := &Analysis{
		AutoMatched:      []AutoMatch{},
		NeedsResolution:  []resolution.Conflict{},
		TotalUniqueNames: len(names),
	}
	if len(names) == 0 {
		return result, nil
	}

	aliases, err := s.employees.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	snap := matching.NewSnapshot(aliases)

	for _, occ := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := s.policy.Classify(occ.Name, snap)
		s.metrics.NameClassified(source, c.Tier.String())

		switch {
		case c.Bound() && c.Match.Provisional:
			result.AutoMatched = append(result.AutoMatched, AutoMatch{
				InputName:  occ.Name,
				MatchType:  c.Tier.String(),
				Score:      c.Score,
				Leader:     c.Match.CanonicalName,
				RowNumbers: occ.RowNumbers,
			})

		case c.Tier == matching.TierExact:
			result.AutoMatched = append(result.AutoMatched, AutoMatch{
				InputName:  occ.Name,
				EmployeeID: c.Match.EmployeeID,
				MatchType:  c.Tier.String(),
				Score:      c.Score,
				RowNumbers: occ.RowNumbers,
			})

		case c.Tier == matching.TierAuto:
			alias := newAlias(occ.Name, c.Match.EmployeeID, source, false)
			if err := s.employees.RecordAlias(ctx, alias); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.WarnContext(ctx, "record auto alias failed",
					slog.String("name", occ.Name),
					slog.String("employee_id", c.Match.EmployeeID.String()),
					slog.String("error", err.Error()),
				)
				result.Errors = append(result.Errors, NameError{InputName: occ.Name, Reason: err.Error()})
				continue
			}
			snap.AddAlias(occ.Name, c.Match.EmployeeID, c.Match.CanonicalName, false)
			result.AutoMatched = append(result.AutoMatched, AutoMatch{
				InputName:  occ.Name,
				EmployeeID: c.Match.EmployeeID,
				MatchType:  c.Tier.String(),
				Score:      c.Score,
				RowNumbers: occ.RowNumbers,
			})

		case c.Tier == matching.TierManual:
			result.NeedsResolution = append(result.NeedsResolution, resolution.Conflict{
				InputName:  occ.Name,
				Candidates: c.Candidates,
				Confidence: resolution.ConfidenceMedium,
				RowNumbers: occ.RowNumbers,
			})

		default:
			// Likely a new person. Later spellings in this batch follow it.
			snap.AddProvisional(occ.Name)
			result.NeedsResolution = append(result.NeedsResolution, resolution.Conflict{
				InputName:  occ.Name,
				Candidates: []matching.Candidate{},
				Confidence: resolution.ConfidenceLow,
				RowNumbers: occ.RowNumbers,
			})
		}
	}

	s.log.InfoContext(ctx, "names analyzed",
		slog.String("source", source.String()),
		slog.Int("unique", result.TotalUniqueNames),
		slog.Int("auto_matched", len(result.AutoMatched)),
		slog.Int("needs_resolution", len(result.NeedsResolution)),
	)

	return result, nil
}

func newAlias(name string, employeeID uuid.UUID, source domain.Source, confirmed bool) domain.Alias {
	a := domain.Alias{
		ID:              uuid.New(),
		EmployeeID:      employeeID,
		Alias:           domain.CanonicalDisplayName(name),
		AliasNormalized: domain.NormalizeName(name),
		Source:          source,
		ConfirmedByUser: confirmed,
	}
	if confirmed {
		now := time.Now().UTC()
		a.ConfirmedAt = &now
	}
	return a
}
