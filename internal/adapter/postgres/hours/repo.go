// Package hours stores daily worked hours per employee.
package hours

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Repo provides daily hours persistence backed by PostgreSQL.
type Repo struct {
	pool postgres.Querier
}

// New creates a new hours repository.
func New(pool postgres.Querier) *Repo {
	return &Repo{pool: pool}
}

type existingRow struct {
	EmployeeID uuid.UUID `db:"employee_id"`
	WorkDate   time.Time `db:"work_date"`
	Hours      float64   `db:"hours"`
}

// ExistingHours returns the stored hours for each key that already has a
// record. Keys without a record are absent from the result.
func (r *Repo) ExistingHours(ctx context.Context, keys []domain.HoursKey) (map[domain.HoursKey]float64, error) {
	out := make(map[domain.HoursKey]float64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	ids := make([]string, len(keys))
	dates := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = k.EmployeeID.String()
		dates[i] = k.Date
	}

	var rows []existingRow
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &rows,
		`SELECT employee_id, work_date, hours
		 FROM daily_hours
		 WHERE (employee_id, work_date) IN (SELECT * FROM unnest($1::uuid[], $2::date[]))`,
		ids, dates,
	)
	if err != nil {
		return nil, fmt.Errorf("existing hours: %w", err)
	}

	for _, row := range rows {
		out[domain.NewHoursKey(row.EmployeeID, row.WorkDate)] = row.Hours
	}
	return out, nil
}

// UpsertBatch writes the records in one round trip. A record for an existing
// (employee, date) replaces every stored field.
func (r *Repo) UpsertBatch(ctx context.Context, records []domain.DailyHoursRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO daily_hours (employee_id, work_date, hours, status, entry_time, exit_time, notes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (employee_id, work_date) DO UPDATE
			 SET hours = EXCLUDED.hours,
			     status = EXCLUDED.status,
			     entry_time = EXCLUDED.entry_time,
			     exit_time = EXCLUDED.exit_time,
			     notes = EXCLUDED.notes,
			     updated_at = EXCLUDED.updated_at`,
			rec.EmployeeID, rec.WorkDate.Format(time.DateOnly), rec.Hours,
			rec.Status, rec.EntryTime, rec.ExitTime, rec.Notes, updatedAt,
		)
	}

	results := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()

	for _, rec := range records {
		if _, err := results.Exec(); err != nil {
			key := rec.Key()
			return postgres.MapError(err, "daily_hours", key.EmployeeID.String()+"/"+key.Date)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

type recordRow struct {
	EmployeeID uuid.UUID `db:"employee_id"`
	WorkDate   time.Time `db:"work_date"`
	Hours      float64   `db:"hours"`
	Status     *string   `db:"status"`
	EntryTime  *string   `db:"entry_time"`
	ExitTime   *string   `db:"exit_time"`
	Notes      *string   `db:"notes"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// ListByEmployee returns an employee's records within [from, to], oldest first.
func (r *Repo) ListByEmployee(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]domain.DailyHoursRecord, error) {
	var rows []recordRow
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &rows,
		`SELECT employee_id, work_date, hours, status, entry_time, exit_time, notes, updated_at
		 FROM daily_hours
		 WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		 ORDER BY work_date`,
		employeeID, from.Format(time.DateOnly), to.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("list hours: %w", err)
	}

	out := make([]domain.DailyHoursRecord, len(rows))
	for i, row := range rows {
		out[i] = domain.DailyHoursRecord(row)
	}
	return out, nil
}

// DeleteBefore removes records with a work date before cutoff and returns how
// many were deleted.
func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx,
		`DELETE FROM daily_hours WHERE work_date < $1::date`, cutoff.Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("delete hours before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	return tag.RowsAffected(), nil
}
