// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeBusy     = "busy"
	OutcomeFailed   = "failed"
)

// Metrics groups every collector. A nil *Metrics records nothing.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	AuthAttempts *prometheus.CounterVec

	ImportsTotal       *prometheus.CounterVec
	ImportDuration     prometheus.Histogram
	ImportRows         *prometheus.CounterVec
	CategoriesCreated  prometheus.Counter
	ImportsInFlight    prometheus.Gauge
	ArchiveUploadsFail prometheus.Counter
}

// New registers the collectors on reg, every name prefixed with prefix.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		ImportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_imports_total",
				Help: "Product imports by outcome",
			},
			[]string{"outcome"},
		),
		ImportDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    prefix + "_product_import_duration_seconds",
				Help:    "Duration of product imports in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		ImportRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_import_rows_total",
				Help: "Imported rows by result",
			},
			[]string{"result"},
		),
		CategoriesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_categories_created_total",
				Help: "Categories created by imports",
			},
		),
		ImportsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_product_imports_in_flight",
				Help: "Product imports currently running",
			},
		),
		ArchiveUploadsFail: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_import_archive_failures_total",
				Help: "Uploaded files that could not be archived",
			},
		),
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}

// RecordAuth counts a login attempt; result is "success" or "failure".
func (m *Metrics) RecordAuth(result string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(result).Inc()
}

// ImportStarted marks an import as running and returns the func that ends it.
func (m *Metrics) ImportStarted() func(outcome string) {
	if m == nil {
		return func(string) {}
	}
	start := time.Now()
	m.ImportsInFlight.Inc()
	return func(outcome string) {
		m.ImportsInFlight.Dec()
		m.ImportsTotal.WithLabelValues(outcome).Inc()
		m.ImportDuration.Observe(time.Since(start).Seconds())
	}
}

// RecordImportRows counts rows of a finished import.
func (m *Metrics) RecordImportRows(created, invalid, duplicate, newCategories int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("created").Add(float64(created))
	m.ImportRows.WithLabelValues("invalid").Add(float64(invalid))
	m.ImportRows.WithLabelValues("duplicate").Add(float64(duplicate))
	m.CategoriesCreated.Add(float64(newCategories))
}

// RecordArchiveFailure counts an upload that could not be archived.
func (m *Metrics) RecordArchiveFailure() {
	if m == nil {
		return
	}
	m.ArchiveUploadsFail.Inc()
}
