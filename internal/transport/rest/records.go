package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/records"
)

type recordsService interface {
	EmployeeHours(ctx context.Context, employeeID uuid.UUID, p domain.Period) (*records.EmployeeHours, error)
	Article(ctx context.Context, articleID string) (*records.ArticleView, error)
}

// RecordsHandler serves stored hours and articles.
type RecordsHandler struct {
	records recordsService
	log     *slog.Logger
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(svc recordsService, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{records: svc, log: logger.With("handler", "records")}
}

// EmployeeHours returns one employee's stored days.
// GET /api/v1/employees/{id}/hours?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *RecordsHandler) EmployeeHours(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.log, "employee hours", domain.NewValidationError("id", "must be a UUID"))
		return
	}
	p, err := periodParams(r)
	if err != nil {
		writeServiceError(w, r, h.log, "employee hours", err)
		return
	}

	out, err := h.records.EmployeeHours(r.Context(), id, p)
	if err != nil {
		writeServiceError(w, r, h.log, "employee hours", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Article returns one stored article.
// GET /api/v1/articles/{id}
func (h *RecordsHandler) Article(w http.ResponseWriter, r *http.Request) {
	out, err := h.records.Article(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.log, "get article", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
