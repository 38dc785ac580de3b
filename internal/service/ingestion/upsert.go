package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Upsert writes rows whose names are bound in resolved.
//
// Hours are keyed by (employee, date) and the latest upload replaces every
// field. Articles are keyed by article id; stored views only ever grow and the
// low-view flag follows the stored count. Existing keys are fetched first so
// each written row can be reported as inserted or updated. Rows are written in
// chunks, one transaction per chunk; a failed chunk is reported and the rest
// continue. ErrAllChunksFailed is returned, along with the receipt, only when
// nothing could be written.
func (s *Service) Upsert(
	ctx context.Context,
	resolved map[string]uuid.UUID,
	rows []domain.ParsedRow,
	source domain.Source,
) (*Receipt, error) {
	return s.upsert(ctx, resolved, nil, rows, source)
}

// upsert is Upsert with the reasons names were left unbound, so the receipt
// can say why their rows were skipped.
func (s *Service) upsert(
	ctx context.Context,
	resolved map[string]uuid.UUID,
	unresolved []*domain.UnresolvedNameError,
	rows []domain.ParsedRow,
	source domain.Source,
) (*Receipt, error) {
	if !source.IsValid() {
		return nil, domain.NewValidationError("source", "must be hours or articles")
	}

	b := newBatch(resolved, unresolved)

	var (
		receipt *Receipt
		err     error
	)
	switch source {
	case domain.SourceHours:
		receipt, err = s.upsertHours(ctx, b, rows)
	case domain.SourceArticles:
		receipt, err = s.upsertArticles(ctx, b, rows)
	}
	if receipt == nil {
		return nil, err
	}

	s.metrics.RowsProcessed(source, "inserted", receipt.Inserted)
	s.metrics.RowsProcessed(source, "updated", receipt.Updated)
	s.metrics.RowsProcessed(source, "skipped", receipt.Skipped)

	s.log.InfoContext(ctx, "upload written",
		slog.String("source", source.String()),
		slog.Int("rows", len(rows)),
		slog.Int("inserted", receipt.Inserted),
		slog.Int("updated", receipt.Updated),
		slog.Int("skipped", receipt.Skipped),
		slog.Int("errors", len(receipt.Errors)),
	)

	receipt.Errors = truncate(receipt.Errors, s.cfg.MaxReceiptErrors)
	receipt.Notices = truncate(receipt.Notices, s.cfg.MaxReceiptErrors)
	return receipt, err
}

// batch accumulates the outcome of one upsert.
type batch struct {
	byName  map[string]uuid.UUID
	reasons map[string]string
	receipt *Receipt
}

func newBatch(resolved map[string]uuid.UUID, unresolved []*domain.UnresolvedNameError) *batch {
	byName := make(map[string]uuid.UUID, len(resolved))
	for name, id := range resolved {
		byName[domain.NormalizeName(name)] = id
	}
	reasons := make(map[string]string, len(unresolved))
	for _, u := range unresolved {
		if u != nil && u.Reason != "" {
			reasons[domain.NormalizeName(u.Name)] = u.Reason
		}
	}
	return &batch{byName: byName, reasons: reasons, receipt: &Receipt{Errors: []string{}}}
}

func (b *batch) lookup(name string) (uuid.UUID, bool) {
	id, ok := b.byName[domain.NormalizeName(name)]
	return id, ok
}

func (b *batch) skip(row int, format string, args ...any) {
	b.receipt.Skipped++
	b.receipt.Errors = append(b.receipt.Errors, (&domain.ParseRowError{Row: row, Message: fmt.Sprintf(format, args...)}).Error())
}

func (b *batch) skipUnresolved(row int, name string) {
	b.receipt.Skipped++
	msg := (&domain.UnresolvedNameError{Name: name, Reason: b.reasons[domain.NormalizeName(name)]}).Error()
	b.receipt.Errors = append(b.receipt.Errors, (&domain.ParseRowError{Row: row, Message: msg}).Error())
}

func (b *batch) notice(format string, args ...any) {
	b.receipt.Notices = append(b.receipt.Notices, fmt.Sprintf(format, args...))
}

// writeChunks runs write over [0, n) in chunks and reports which windows
// committed. A context error aborts immediately.
func (s *Service) writeChunks(
	ctx context.Context,
	b *batch,
	n int,
	write func(ctx context.Context, start, end int) error,
) (committed [][2]int, err error) {
	windows := chunks(n, s.chunkSize())
	failed := 0
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return committed, err
		}
		txErr := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			return write(txCtx, w[0], w[1])
		})
		if txErr != nil {
			if ctx.Err() != nil {
				return committed, ctx.Err()
			}
			failed++
			bwe := &domain.BatchWriteError{Chunk: i + 1, Rows: w[1] - w[0], Err: txErr}
			b.receipt.Skipped += w[1] - w[0]
			b.receipt.Errors = append(b.receipt.Errors, bwe.Error())
			s.log.ErrorContext(ctx, "chunk write failed",
				slog.Int("chunk", i+1),
				slog.Int("rows", w[1]-w[0]),
				slog.String("error", txErr.Error()),
			)
			continue
		}
		committed = append(committed, w)
	}
	if len(windows) > 0 && failed == len(windows) {
		return committed, fmt.Errorf("%w: %d chunks", domain.ErrAllChunksFailed, failed)
	}
	return committed, nil
}

// ---------------------------------------------------------------------------
// Hours
// ---------------------------------------------------------------------------

type hoursItem struct {
	row    int
	record domain.DailyHoursRecord
}

func (s *Service) upsertHours(ctx context.Context, b *batch, rows []domain.ParsedRow) (*Receipt, error) {
	maxHours := s.maxDailyHours()
	now := time.Now().UTC()

	index := make(map[domain.HoursKey]int)
	var items []hoursItem

	for _, r := range rows {
		switch row := r.(type) {
		case domain.HoursRow:
			name := domain.CanonicalDisplayName(row.Name)
			if name == "" {
				b.skip(row.Row, "missing employee name")
				continue
			}
			if row.Date.IsZero() {
				b.skip(row.Row, "missing work date")
				continue
			}
			if math.IsNaN(row.Hours) || row.Hours < 0 || row.Hours > maxHours {
				b.skip(row.Row, "hours %v outside [0, %v]", row.Hours, maxHours)
				continue
			}
			id, ok := b.lookup(name)
			if !ok {
				b.skipUnresolved(row.Row, name)
				continue
			}

			rec := domain.DailyHoursRecord{
				EmployeeID: id,
				WorkDate:   truncateDate(row.Date),
				Hours:      row.Hours,
				Status:     row.Status,
				EntryTime:  row.EntryTime,
				ExitTime:   row.ExitTime,
				Notes:      row.Notes,
				UpdatedAt:  now,
			}
			key := rec.Key()
			if i, dup := index[key]; dup {
				// Latest row in the file wins.
				b.receipt.Skipped++
				b.notice("row %d superseded by row %d for %s on %s", items[i].row, row.Row, name, key.Date)
				items[i] = hoursItem{row: row.Row, record: rec}
				continue
			}
			index[key] = len(items)
			items = append(items, hoursItem{row: row.Row, record: rec})

		case domain.ArticleRow:
			b.skip(row.Row, "article row in hours upload")
		}
	}

	if len(items) == 0 {
		return b.receipt, nil
	}

	keys := make([]domain.HoursKey, len(items))
	for i, it := range items {
		keys[i] = it.record.Key()
	}
	existing, err := s.hours.ExistingHours(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("prefetch hours: %w", err)
	}

	committed, err := s.writeChunks(ctx, b, len(items), func(txCtx context.Context, start, end int) error {
		records := make([]domain.DailyHoursRecord, 0, end-start)
		for _, it := range items[start:end] {
			records = append(records, it.record)
		}
		return s.hours.UpsertBatch(txCtx, records)
	})

	for _, w := range committed {
		for _, it := range items[w[0]:w[1]] {
			old, ok := existing[it.record.Key()]
			if !ok {
				b.receipt.Inserted++
				continue
			}
			b.receipt.Updated++
			if old != it.record.Hours {
				b.notice("hours for %s on %s overwritten: %v -> %v",
					it.record.EmployeeID, it.record.Key().Date, old, it.record.Hours)
				s.log.InfoContext(ctx, "hours overwritten",
					slog.String("employee_id", it.record.EmployeeID.String()),
					slog.String("date", it.record.Key().Date),
					slog.Float64("old", old),
					slog.Float64("new", it.record.Hours),
				)
			}
		}
	}

	return b.receipt, err
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ---------------------------------------------------------------------------
// Articles
// ---------------------------------------------------------------------------

type articleItem struct {
	row    int
	record domain.ArticleRecord
}

func (s *Service) upsertArticles(ctx context.Context, b *batch, rows []domain.ParsedRow) (*Receipt, error) {
	threshold := s.cfg.LowViewsThreshold.Int64()
	now := time.Now().UTC()

	index := make(map[string]int)
	var items []articleItem

	for _, r := range rows {
		switch row := r.(type) {
		case domain.ArticleRow:
			if row.ArticleID == "" {
				b.skip(row.Row, "missing article id")
				continue
			}
			if row.Views < 0 {
				b.skip(row.Row, "negative views %d", row.Views)
				continue
			}

			rec := domain.ArticleRecord{
				ArticleID:   row.ArticleID,
				Title:       row.Title,
				Views:       row.Views,
				PublishedAt: row.PublishedAt,
				UpdatedAt:   now,
			}
			// An article without an author is kept, unowned.
			if name := domain.CanonicalDisplayName(row.Name); name != "" {
				id, ok := b.lookup(name)
				if !ok {
					b.skipUnresolved(row.Row, name)
					continue
				}
				rec.EmployeeID = &id
			}

			if i, dup := index[rec.ArticleID]; dup {
				b.receipt.Skipped++
				b.notice("row %d merged into row %d for article %s", items[i].row, row.Row, rec.ArticleID)
				rec.Views = domain.MergeArticleViews(items[i].record.Views, rec.Views)
				items[i] = articleItem{row: row.Row, record: rec}
				continue
			}
			index[rec.ArticleID] = len(items)
			items = append(items, articleItem{row: row.Row, record: rec})

		case domain.HoursRow:
			b.skip(row.Row, "hours row in articles upload")
		}
	}

	if len(items) == 0 {
		return b.receipt, nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.record.ArticleID
		items[i].record.IsLowViews = domain.IsLowViews(it.record.Views, threshold)
	}
	existing, err := s.articles.ExistingViews(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("prefetch articles: %w", err)
	}

	committed, err := s.writeChunks(ctx, b, len(items), func(txCtx context.Context, start, end int) error {
		records := make([]domain.ArticleRecord, 0, end-start)
		for _, it := range items[start:end] {
			records = append(records, it.record)
		}
		return s.articles.UpsertBatch(txCtx, records, threshold)
	})

	for _, w := range committed {
		for _, it := range items[w[0]:w[1]] {
			old, ok := existing[it.record.ArticleID]
			if !ok {
				b.receipt.Inserted++
				continue
			}
			b.receipt.Updated++
			switch {
			case it.record.Views > old:
				b.notice("article %s views raised: %d -> %d", it.record.ArticleID, old, it.record.Views)
				s.log.InfoContext(ctx, "article views raised",
					slog.String("article_id", it.record.ArticleID),
					slog.Int64("old", old),
					slog.Int64("new", it.record.Views),
				)
			case it.record.Views < old:
				b.notice("article %s kept %d views (upload had %d)", it.record.ArticleID, old, it.record.Views)
			}
		}
	}

	return b.receipt, err
}
