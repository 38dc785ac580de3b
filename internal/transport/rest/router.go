package rest

import (
	"net/http"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health    *HealthHandler
	Uploads   *UploadHandler
	Employees *EmployeeHandler
	Records   *RecordsHandler
	KPI       *KPIHandler
	Metrics   http.Handler
}

// NewRouter registers every route on a fresh ServeMux. A nil Metrics handler
// leaves /metrics unmounted.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	mux.HandleFunc("POST /api/v1/uploads/{source}/analyze", h.Uploads.Analyze)
	mux.HandleFunc("POST /api/v1/uploads/{source}/execute", h.Uploads.Execute)
	mux.HandleFunc("POST /api/v1/uploads/{source}/upsert", h.Uploads.Upsert)

	mux.HandleFunc("GET /api/v1/employees", h.Employees.List)
	mux.HandleFunc("GET /api/v1/employees/{id}/hours", h.Records.EmployeeHours)
	mux.HandleFunc("GET /api/v1/articles/{id}", h.Records.Article)
	mux.HandleFunc("GET /api/v1/kpi/rankings", h.KPI.Rankings)

	return mux
}
