// Package employee implements the employee registry using PostgreSQL.
// The unique indexes on employees.normalized_name and
// employee_aliases.alias_normalized are what keep concurrent uploads from
// minting duplicate identities.
package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

const (
	employeesTable = "employees"
	aliasesTable   = "employee_aliases"

	employeeNumberKey = "employees_employee_number_key"
)

var employeeColumns = []string{
	"id", "canonical_name", "normalized_name", "first_name", "last_name", "employee_number", "created_at",
}

// Repo provides employee and alias persistence backed by PostgreSQL.
type Repo struct {
	pool postgres.Querier
}

// New creates a new employee repository.
func New(pool postgres.Querier) *Repo {
	return &Repo{pool: pool}
}

type employeeRow struct {
	ID             uuid.UUID `db:"id"`
	CanonicalName  string    `db:"canonical_name"`
	NormalizedName string    `db:"normalized_name"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	EmployeeNumber *string   `db:"employee_number"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r employeeRow) toDomain() domain.Employee {
	return domain.Employee{
		ID:             r.ID,
		CanonicalName:  r.CanonicalName,
		NormalizedName: r.NormalizedName,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		EmployeeNumber: r.EmployeeNumber,
		CreatedAt:      r.CreatedAt,
	}
}

type aliasRow struct {
	ID              uuid.UUID  `db:"id"`
	EmployeeID      uuid.UUID  `db:"employee_id"`
	Alias           string     `db:"alias"`
	AliasNormalized string     `db:"alias_normalized"`
	Source          string     `db:"source"`
	ConfirmedByUser bool       `db:"confirmed_by_user"`
	ConfirmedAt     *time.Time `db:"confirmed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// ListAliases returns every alias with its employee's canonical name, oldest
// first. This is the snapshot the matching policy runs against.
func (r *Repo) ListAliases(ctx context.Context) ([]domain.AliasEntry, error) {
	query := postgres.Builder().
		Select("a.alias_normalized", "a.employee_id", "e.canonical_name", "a.confirmed_by_user").
		From(aliasesTable + " a").
		Join(employeesTable + " e ON e.id = a.employee_id").
		OrderBy("a.created_at", "a.alias_normalized")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list aliases: %w", err)
	}

	var out []domain.AliasEntry
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	return out, nil
}

// FindByAlias returns the employee owning a normalized alias.
// Returns domain.ErrNotFound if no employee owns it.
func (r *Repo) FindByAlias(ctx context.Context, normalized string) (uuid.UUID, error) {
	sql, args, err := postgres.Builder().
		Select("employee_id").
		From(aliasesTable).
		Where(squirrel.Eq{"alias_normalized": normalized}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("build find by alias: %w", err)
	}

	var id uuid.UUID
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return uuid.Nil, postgres.MapError(err, "alias", normalized)
	}
	return id, nil
}

// FindByNormalizedName returns the employee with the given matching key.
func (r *Repo) FindByNormalizedName(ctx context.Context, normalized string) (*domain.Employee, error) {
	sql, args, err := postgres.Builder().
		Select(employeeColumns...).
		From(employeesTable).
		Where(squirrel.Eq{"normalized_name": normalized}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find employee: %w", err)
	}

	var row employeeRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.pool), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "employee", normalized)
	}
	e := row.toDomain()
	return &e, nil
}

// GetByIDs returns the employees with the given ids. Missing ids are ignored.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Employee, error) {
	if len(ids) == 0 {
		return []domain.Employee{}, nil
	}
	return r.selectEmployees(ctx, postgres.Builder().
		Select(employeeColumns...).
		From(employeesTable).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("canonical_name"))
}

// List returns a page of employees ordered by canonical name, and the total count.
func (r *Repo) List(ctx context.Context, limit, offset int) ([]domain.Employee, int, error) {
	sql, args, err := postgres.Builder().Select("count(*)").From(employeesTable).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count employees: %w", err)
	}
	var total int
	if err := postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	employees, err := r.selectEmployees(ctx, postgres.Builder().
		Select(employeeColumns...).
		From(employeesTable).
		OrderBy("canonical_name", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// AliasesByEmployeeIDs returns aliases grouped by employee id.
func (r *Repo) AliasesByEmployeeIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Alias, error) {
	out := make(map[uuid.UUID][]domain.Alias, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := postgres.Builder().
		Select("id", "employee_id", "alias", "alias_normalized", "source", "confirmed_by_user", "confirmed_at", "created_at").
		From(aliasesTable).
		Where(squirrel.Eq{"employee_id": ids}).
		OrderBy("created_at", "alias_normalized").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build aliases by employee: %w", err)
	}

	var rows []aliasRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("aliases by employee: %w", err)
	}
	for _, a := range rows {
		out[a.EmployeeID] = append(out[a.EmployeeID], domain.Alias{
			ID:              a.ID,
			EmployeeID:      a.EmployeeID,
			Alias:           a.Alias,
			AliasNormalized: a.AliasNormalized,
			Source:          domain.Source(a.Source),
			ConfirmedByUser: a.ConfirmedByUser,
			ConfirmedAt:     a.ConfirmedAt,
			CreatedAt:       a.CreatedAt,
		})
	}
	return out, nil
}

func (r *Repo) selectEmployees(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Employee, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select employees: %w", err)
	}

	var rows []employeeRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select employees: %w", err)
	}

	out := make([]domain.Employee, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new employee. Returns domain.ErrDuplicateIdentity when an
// employee with the same normalized name already exists, and
// domain.ErrConflict when the employee number is taken.
func (r *Repo) Create(ctx context.Context, e domain.NewEmployee) (*domain.Employee, error) {
	normalized := domain.NormalizeName(e.CanonicalName)
	if normalized == "" {
		return nil, domain.NewValidationError("canonical_name", "required")
	}

	sql, args, err := postgres.Builder().
		Insert(employeesTable).
		Columns("id", "canonical_name", "normalized_name", "first_name", "last_name", "employee_number").
		Values(uuid.New(), e.CanonicalName, normalized, e.FirstName, e.LastName, e.EmployeeNumber).
		Suffix("RETURNING " + strings.Join(employeeColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build create employee: %w", err)
	}

	var row employeeRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.pool), &row, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == employeeNumberKey {
			return nil, fmt.Errorf("employee number %s: %w", derefString(e.EmployeeNumber), domain.ErrConflict)
		}
		mapped := postgres.MapError(err, "employee", normalized)
		if errors.Is(mapped, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("employee %s: %w", normalized, domain.ErrDuplicateIdentity)
		}
		return nil, mapped
	}

	out := row.toDomain()
	return &out, nil
}

// RecordAlias stores an alias. Recording an alias the employee already has is
// a no-op; an alias owned by a different employee yields domain.ErrConflict.
// Existing aliases are never modified.
func (r *Repo) RecordAlias(ctx context.Context, a domain.Alias) error {
	if !a.Source.IsAliasSource() {
		return domain.NewValidationError("source", "must be hours, articles or roster")
	}
	if a.AliasNormalized == "" {
		a.AliasNormalized = domain.NormalizeName(a.Alias)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	sql, args, err := postgres.Builder().
		Insert(aliasesTable).
		Columns("id", "employee_id", "alias", "alias_normalized", "source", "confirmed_by_user", "confirmed_at").
		Values(a.ID, a.EmployeeID, a.Alias, a.AliasNormalized, string(a.Source), a.ConfirmedByUser, a.ConfirmedAt).
		Suffix("ON CONFLICT (alias_normalized) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build record alias: %w", err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "alias", a.AliasNormalized)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	owner, err := r.FindByAlias(ctx, a.AliasNormalized)
	if err != nil {
		return err
	}
	if owner != a.EmployeeID {
		return fmt.Errorf("alias %q belongs to employee %s: %w", a.AliasNormalized, owner, domain.ErrConflict)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
