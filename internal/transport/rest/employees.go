package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/identity"
)

type employeeDirectory interface {
	List(ctx context.Context, limit, offset int) (*identity.EmployeePage, error)
}

// EmployeeHandler serves the registry listing.
type EmployeeHandler struct {
	directory employeeDirectory
	log       *slog.Logger
}

// NewEmployeeHandler creates an EmployeeHandler.
func NewEmployeeHandler(directory employeeDirectory, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{directory: directory, log: logger.With("handler", "employees")}
}

// List returns a page of employees with their aliases.
// GET /api/v1/employees?limit=50&offset=0
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		writeServiceError(w, r, h.log, "list employees", err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		writeServiceError(w, r, h.log, "list employees", err)
		return
	}

	page, err := h.directory.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, h.log, "list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
