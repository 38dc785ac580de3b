// Package kpi reads period aggregates for the KPI rollups.
package kpi

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	postgres "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Repo reads KPI aggregates from PostgreSQL.
type Repo struct {
	pool postgres.Querier
}

// New creates a new KPI repository.
func New(pool postgres.Querier) *Repo {
	return &Repo{pool: pool}
}

// PeriodStats returns per-employee aggregates for employees with any hours
// or attributed articles in the period, ordered by canonical name.
func (r *Repo) PeriodStats(ctx context.Context, p domain.Period, lowViewsThreshold int64) ([]domain.EmployeeStats, error) {
	var out []domain.EmployeeStats
	err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &out,
		`SELECT employee_id, canonical_name, total_hours, days_worked, article_count, low_view_count, total_views
		 FROM employee_period_stats($1::date, $2::date, $3::bigint)`,
		p.From.Format(time.DateOnly), p.To.Format(time.DateOnly), lowViewsThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("period stats: %w", err)
	}
	return out, nil
}

// Totals returns newsroom-wide aggregates for the period. Orphan articles
// count toward TotalArticles.
func (r *Repo) Totals(ctx context.Context, p domain.Period) (domain.PeriodTotals, error) {
	var out domain.PeriodTotals
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.pool), &out,
		`SELECT
		   (SELECT COALESCE(SUM(hours), 0)::DOUBLE PRECISION FROM daily_hours
		     WHERE work_date BETWEEN $1::date AND $2::date)                       AS total_hours,
		   COUNT(a.article_id)                                                    AS total_articles,
		   COUNT(a.article_id) FILTER (WHERE a.employee_id IS NULL)               AS orphan_articles,
		   COALESCE(SUM(a.views), 0)::BIGINT                                      AS total_views
		 FROM articles a
		 WHERE a.published_at >= $1::date AND a.published_at < $2::date + 1`,
		p.From.Format(time.DateOnly), p.To.Format(time.DateOnly),
	)
	if err != nil {
		return domain.PeriodTotals{}, fmt.Errorf("period totals: %w", err)
	}
	return out, nil
}
