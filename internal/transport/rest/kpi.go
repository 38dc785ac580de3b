package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/kpi"
)

type kpiService interface {
	Rankings(ctx context.Context, p domain.Period) (*kpi.Rankings, error)
}

// KPIHandler serves performance rollups.
type KPIHandler struct {
	kpi kpiService
	log *slog.Logger
}

// NewKPIHandler creates a KPIHandler.
func NewKPIHandler(svc kpiService, logger *slog.Logger) *KPIHandler {
	return &KPIHandler{kpi: svc, log: logger.With("handler", "kpi")}
}

// Rankings returns per-employee KPIs for an inclusive date range.
// GET /api/v1/kpi/rankings?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *KPIHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	p, err := periodParams(r)
	if err != nil {
		writeServiceError(w, r, h.log, "kpi rankings", err)
		return
	}

	rankings, err := h.kpi.Rankings(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, h.log, "kpi rankings", err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}

// periodParams reads the required from/to query dates.
func periodParams(r *http.Request) (domain.Period, error) {
	var (
		p    domain.Period
		errs []domain.FieldError
	)
	for _, f := range []struct {
		name string
		dst  *time.Time
	}{{"from", &p.From}, {"to", &p.To}} {
		v := r.URL.Query().Get(f.name)
		if v == "" {
			errs = append(errs, domain.FieldError{Field: f.name, Message: "required"})
			continue
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: f.name, Message: "must be YYYY-MM-DD"})
			continue
		}
		*f.dst = t
	}
	if len(errs) > 0 {
		return domain.Period{}, domain.NewValidationErrors(errs)
	}
	return p, nil
}
