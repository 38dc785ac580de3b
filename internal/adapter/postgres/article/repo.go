// Package article stores per-article engagement stats.
package article

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/newsdesk-analytics/internal/adapter/postgres"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Repo provides article persistence backed by PostgreSQL.
type Repo struct {
	pool postgres.Querier
}

// New creates a new article repository.
func New(pool postgres.Querier) *Repo {
	return &Repo{pool: pool}
}

type viewsRow struct {
	ArticleID string `db:"article_id"`
	Views     int64  `db:"views"`
}

// ExistingViews returns stored view counts for the ids that already exist.
// The ids travel as one array parameter, so export size is not bounded by
// the bind-parameter limit.
func (r *Repo) ExistingViews(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := postgres.Builder().
		Select("article_id", "views").
		From("articles").
		Where(squirrel.Expr("article_id = ANY(?::text[])", ids)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build existing views: %w", err)
	}

	var rows []viewsRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.pool), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("existing views: %w", err)
	}
	for _, row := range rows {
		out[row.ArticleID] = row.Views
	}
	return out, nil
}

// upsertSQL keeps the larger view count and recomputes the low-view flag from
// the merged value. An upload without an author or publish date does not
// erase the stored one.
const upsertSQL = `INSERT INTO articles (article_id, employee_id, title, views, published_at, is_low_views, updated_at)
VALUES ($1, $2, $3, $4, $5, $4 < $6::bigint, $7)
ON CONFLICT (article_id) DO UPDATE
SET employee_id  = COALESCE(EXCLUDED.employee_id, articles.employee_id),
    title        = CASE WHEN EXCLUDED.title <> '' THEN EXCLUDED.title ELSE articles.title END,
    views        = GREATEST(articles.views, EXCLUDED.views),
    published_at = COALESCE(EXCLUDED.published_at, articles.published_at),
    is_low_views = GREATEST(articles.views, EXCLUDED.views) < $6::bigint,
    updated_at   = EXCLUDED.updated_at`

// UpsertBatch writes the records in one round trip.
func (r *Repo) UpsertBatch(ctx context.Context, records []domain.ArticleRecord, lowViewsThreshold int64) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		batch.Queue(upsertSQL,
			rec.ArticleID, rec.EmployeeID, rec.Title, rec.Views, rec.PublishedAt, lowViewsThreshold, updatedAt,
		)
	}

	results := postgres.QuerierFromCtx(ctx, r.pool).SendBatch(ctx, batch)
	defer results.Close()

	for _, rec := range records {
		if _, err := results.Exec(); err != nil {
			return postgres.MapError(err, "article", rec.ArticleID)
		}
	}
	return nil
}

type articleRow struct {
	ArticleID   string     `db:"article_id"`
	EmployeeID  *uuid.UUID `db:"employee_id"`
	Title       string     `db:"title"`
	Views       int64      `db:"views"`
	PublishedAt *time.Time `db:"published_at"`
	IsLowViews  bool       `db:"is_low_views"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// GetByID returns one article.
func (r *Repo) GetByID(ctx context.Context, articleID string) (*domain.ArticleRecord, error) {
	sql, args, err := postgres.Builder().
		Select("article_id", "employee_id", "title", "views", "published_at", "is_low_views", "updated_at").
		From("articles").
		Where(squirrel.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get article: %w", err)
	}

	var row articleRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.pool), &row, sql, args...); err != nil {
		return nil, postgres.MapError(err, "article", articleID)
	}

	return &domain.ArticleRecord{
		ArticleID:   row.ArticleID,
		EmployeeID:  row.EmployeeID,
		Title:       row.Title,
		Views:       row.Views,
		PublishedAt: row.PublishedAt,
		IsLowViews:  row.IsLowViews,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

// DeleteBefore removes articles published before cutoff. Articles without a
// publish date are kept.
func (r *Repo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := postgres.Builder().
		Delete("articles").
		Where(squirrel.Lt{"published_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete articles: %w", err)
	}
	tag, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete articles before %s: %w", cutoff.Format(time.DateOnly), err)
	}
	return tag.RowsAffected(), nil
}
