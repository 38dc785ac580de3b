package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// Execute commits human decisions and returns the full name → employee map
// for the batch. Failures on one name are collected and never abort the rest.
//
// A CREATE_NEW decision is checked again against the live registry first: if
// an employee created earlier in this call (or concurrently, under the same
// normalized name) already covers the name, it is bound instead of minting a
// duplicate.
func (s *Service) Execute(ctx context.Context, input ExecuteInput) (*ExecuteResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	result := &ExecuteResult{Resolved: make(map[string]Binding, len(input.AutoMatched)+len(input.Decisions))}

	for _, m := range input.AutoMatched {
		if !m.IsFollower() {
			result.Resolved[m.InputName] = Binding{EmployeeID: m.EmployeeID}
		}
	}

	if len(input.Decisions) > 0 {
		aliases, err := s.employees.ListAliases(ctx)
		if err != nil {
			return nil, fmt.Errorf("list aliases: %w", err)
		}
		snap := matching.NewSnapshot(aliases)
		created := make(map[uuid.UUID]bool)

		for _, d := range input.Decisions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			var (
				id  uuid.UUID
				err error
			)
			switch d.Action {
			case resolution.ActionMatch:
				id, err = s.bindExisting(ctx, d.InputName, d.EmployeeID, input.Source)
			case resolution.ActionCreateNew:
				id, err = s.createOrBind(ctx, d.InputName, input.Source, snap, created)
			}
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.log.WarnContext(ctx, "decision failed",
					slog.String("name", d.InputName),
					slog.String("action", string(d.Action)),
					slog.String("error", err.Error()),
				)
				result.Errors = append(result.Errors, NameError{InputName: d.InputName, Reason: err.Error()})
				continue
			}

			snap.AddAlias(d.InputName, id, d.InputName, true)
			result.Resolved[d.InputName] = Binding{EmployeeID: id, ConfirmedByUser: true}
		}
		result.Created = len(created)
	}

	for _, m := range input.AutoMatched {
		if !m.IsFollower() {
			continue
		}
		leader, ok := result.Resolved[m.Leader]
		if !ok {
			continue
		}
		if err := s.employees.RecordAlias(ctx, newAlias(m.InputName, leader.EmployeeID, input.Source, false)); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.Errors = append(result.Errors, NameError{InputName: m.InputName, Reason: err.Error()})
			continue
		}
		result.Resolved[m.InputName] = Binding{EmployeeID: leader.EmployeeID}
	}

	s.log.InfoContext(ctx, "resolutions executed",
		slog.String("source", input.Source.String()),
		slog.Int("decisions", len(input.Decisions)),
		slog.Int("resolved", len(result.Resolved)),
		slog.Int("created", result.Created),
		slog.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// bindExisting records name as a confirmed alias of employeeID.
func (s *Service) bindExisting(ctx context.Context, name string, employeeID uuid.UUID, source domain.Source) (uuid.UUID, error) {
	if err := s.employees.RecordAlias(ctx, newAlias(name, employeeID, source, true)); err != nil {
		return uuid.Nil, fmt.Errorf("record alias: %w", err)
	}
	return employeeID, nil
}

// createOrBind mints an employee for name unless the live snapshot already
// has one that is clearly the same person.
func (s *Service) createOrBind(
	ctx context.Context,
	name string,
	source domain.Source,
	snap *matching.Snapshot,
	created map[uuid.UUID]bool,
) (uuid.UUID, error) {
	c := s.policy.Classify(name, snap)
	if c.Tier == matching.TierExact || (c.Tier == matching.TierAuto && created[c.Match.EmployeeID]) {
		s.log.InfoContext(ctx, "create_new bound to existing employee",
			slog.String("name", name),
			slog.String("employee_id", c.Match.EmployeeID.String()),
			slog.String("match_type", c.Tier.String()),
		)
		return s.bindExisting(ctx, name, c.Match.EmployeeID, source)
	}

	var emp *domain.Employee
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		emp, err = s.employees.Create(txCtx, domain.NewEmployeeFromName(name))
		if err != nil {
			return fmt.Errorf("create employee: %w", err)
		}
		return s.employees.RecordAlias(txCtx, newAlias(emp.CanonicalName, emp.ID, source, true))
	})
	if errors.Is(err, domain.ErrDuplicateIdentity) {
		// Someone else created this person first.
		existing, findErr := s.employees.FindByNormalizedName(ctx, domain.NormalizeName(name))
		if findErr != nil {
			return uuid.Nil, fmt.Errorf("find after duplicate: %w", findErr)
		}
		s.log.InfoContext(ctx, "duplicate identity recovered",
			slog.String("name", name),
			slog.String("employee_id", existing.ID.String()),
		)
		return s.bindExisting(ctx, name, existing.ID, source)
	}
	if err != nil {
		return uuid.Nil, err
	}

	created[emp.ID] = true
	s.metrics.EmployeeCreated(source)
	s.log.InfoContext(ctx, "employee created",
		slog.String("employee_id", emp.ID.String()),
		slog.String("canonical_name", emp.CanonicalName),
		slog.String("source", source.String()),
	)
	return emp.ID, nil
}
