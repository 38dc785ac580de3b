// Package metrics exposes Prometheus collectors for ingestion, identity
// resolution and HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Registry owns the collectors. It satisfies the recorder interfaces of the
// identity and ingestion services.
type Registry struct {
	reg *prometheus.Registry

	rowsProcessed    *prometheus.CounterVec
	namesClassified  *prometheus.CounterVec
	employeesCreated *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

// New creates a registry with every collector registered under namespace.
func New(namespace string) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		rowsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_rows_total",
				Help:      "Upload rows by source and outcome (inserted, updated, skipped).",
			},
			[]string{"source", "outcome"},
		),
		namesClassified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolution_names_total",
				Help:      "Distinct upload names by resolution tier.",
			},
			[]string{"source", "tier"},
		),
		employeesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "employees_created_total",
				Help:      "Employees created during uploads.",
			},
			[]string{"source"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code class.",
			},
			[]string{"method", "route", "status"},
		),
	}

	r.reg.MustRegister(
		r.rowsProcessed,
		r.namesClassified,
		r.employeesCreated,
		r.httpDuration,
		r.httpRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RowsProcessed adds n rows with the given outcome. Zero counts are skipped.
func (r *Registry) RowsProcessed(source domain.Source, outcome string, n int) {
	if n <= 0 {
		return
	}
	r.rowsProcessed.WithLabelValues(source.String(), outcome).Add(float64(n))
}

// NameClassified counts one distinct name at the given tier.
func (r *Registry) NameClassified(source domain.Source, tier string) {
	r.namesClassified.WithLabelValues(source.String(), tier).Inc()
}

// EmployeeCreated counts one new employee.
func (r *Registry) EmployeeCreated(source domain.Source) {
	r.employeesCreated.WithLabelValues(source.String()).Inc()
}

// ObserveHTTP records one finished request.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	r.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
