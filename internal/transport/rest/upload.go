package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/identity"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/ingestion"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
	"github.com/heartmarshall/newsdesk-analytics/pkg/ctxutil"
)

type identityService interface {
	Analyze(ctx context.Context, rows []domain.ParsedRow, source domain.Source) (*identity.Analysis, error)
	Execute(ctx context.Context, input identity.ExecuteInput) (*identity.ExecuteResult, error)
}

type ingestionService interface {
	Upsert(ctx context.Context, resolved map[string]uuid.UUID, rows []domain.ParsedRow, source domain.Source) (*ingestion.Receipt, error)
}

// UploadHandler serves the three upload phases: analyze names, execute
// resolutions, write rows.
type UploadHandler struct {
	identity  identityService
	ingestion ingestionService
	log       *slog.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(identity identityService, ingestion ingestionService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		identity:  identity,
		ingestion: ingestion,
		log:       logger.With("handler", "upload"),
	}
}

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

// RowDTO is one parsed export row. Hours rows use date/hours and the
// optional attendance fields; article rows use articleId/title/views.
// The legacy "name" key is read when fullName is absent.
type RowDTO struct {
	Row         int        `json:"row,omitempty"`
	FullName    string     `json:"fullName"`
	Name        string     `json:"name,omitempty"`
	Date        string     `json:"date,omitempty"`
	Hours       float64    `json:"hours,omitempty"`
	Status      *string    `json:"status,omitempty"`
	EntryTime   *string    `json:"entryTime,omitempty"`
	ExitTime    *string    `json:"exitTime,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	ArticleID   string     `json:"articleId,omitempty"`
	Title       string     `json:"title,omitempty"`
	Views       int64      `json:"views,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// AnalyzeRequest is the body of POST .../analyze.
type AnalyzeRequest struct {
	Rows []RowDTO `json:"rows"`
}

// ExecuteRequest is the body of POST .../execute.
type ExecuteRequest struct {
	Decisions   []resolution.Decision `json:"decisions"`
	AutoMatched []identity.AutoMatch  `json:"autoMatched"`
}

// UpsertRequest is the body of POST .../upsert.
type UpsertRequest struct {
	Resolved map[string]uuid.UUID `json:"resolved"`
	Rows     []RowDTO             `json:"rows"`
}

// UpsertFailure is returned when no chunk could be written.
type UpsertFailure struct {
	Error   string             `json:"error"`
	Receipt *ingestion.Receipt `json:"receipt"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Analyze classifies every distinct name of an upload.
// POST /api/v1/uploads/{source}/analyze
func (h *UploadHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	source, ctx, ok := h.source(w, r)
	if !ok {
		return
	}

	var req AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.log, "decode analyze", err)
		return
	}
	rows, err := toParsedRows(req.Rows, source)
	if err != nil {
		writeServiceError(w, r, h.log, "parse rows", err)
		return
	}

	analysis, err := h.identity.Analyze(ctx, rows, source)
	if err != nil {
		writeServiceError(w, r, h.log, "analyze upload", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Execute commits the operator's decisions and the auto matches.
// POST /api/v1/uploads/{source}/execute
func (h *UploadHandler) Execute(w http.ResponseWriter, r *http.Request) {
	source, ctx, ok := h.source(w, r)
	if !ok {
		return
	}

	var req ExecuteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.log, "decode execute", err)
		return
	}

	result, err := h.identity.Execute(ctx, identity.ExecuteInput{
		Source:      source,
		Decisions:   req.Decisions,
		AutoMatched: req.AutoMatched,
	})
	if err != nil {
		writeServiceError(w, r, h.log, "execute resolutions", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Upsert writes rows for the resolved names and returns a receipt.
// POST /api/v1/uploads/{source}/upsert
func (h *UploadHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	source, ctx, ok := h.source(w, r)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.log, "decode upsert", err)
		return
	}
	rows, err := toParsedRows(req.Rows, source)
	if err != nil {
		writeServiceError(w, r, h.log, "parse rows", err)
		return
	}

	receipt, err := h.ingestion.Upsert(ctx, req.Resolved, rows, source)
	if errors.Is(err, domain.ErrAllChunksFailed) && receipt != nil {
		h.log.ErrorContext(ctx, "upload not written", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, UpsertFailure{Error: "no rows could be written", Receipt: receipt})
		return
	}
	if err != nil {
		writeServiceError(w, r, h.log, "upsert rows", err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// source validates the {source} path segment and tags the context with it.
func (h *UploadHandler) source(w http.ResponseWriter, r *http.Request) (domain.Source, context.Context, bool) {
	source := domain.Source(r.PathValue("source"))
	if !source.IsValid() {
		writeServiceError(w, r, h.log, "upload source", domain.NewValidationError("source", "must be hours or articles"))
		return "", nil, false
	}
	return source, ctxutil.WithSource(r.Context(), source.String()), true
}

func (dto RowDTO) fullName() string {
	if dto.FullName != "" {
		return dto.FullName
	}
	return dto.Name
}

// toParsedRows converts request rows into the sealed row union. Rows without
// an explicit number are numbered from 1 in request order.
func toParsedRows(in []RowDTO, source domain.Source) ([]domain.ParsedRow, error) {
	out := make([]domain.ParsedRow, 0, len(in))
	var errs []domain.FieldError
	for i, dto := range in {
		n := dto.Row
		if n == 0 {
			n = i + 1
		}
		name := dto.fullName()
		switch source {
		case domain.SourceHours:
			var date time.Time
			if dto.Date != "" {
				d, err := time.Parse(time.DateOnly, dto.Date)
				if err != nil {
					errs = append(errs, domain.FieldError{
						Field:   fmt.Sprintf("rows[%d].date", i),
						Message: "must be YYYY-MM-DD",
					})
					continue
				}
				date = d
			}
			out = append(out, domain.HoursRow{
				Row: n, Name: name, Date: date, Hours: dto.Hours,
				Status: dto.Status, EntryTime: dto.EntryTime, ExitTime: dto.ExitTime, Notes: dto.Notes,
			})
		case domain.SourceArticles:
			out = append(out, domain.ArticleRow{
				Row: n, ArticleID: dto.ArticleID, Name: name, Title: dto.Title,
				Views: dto.Views, PublishedAt: dto.PublishedAt,
			})
		}
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}
	return out, nil
}
