// Package metrics defines the Prometheus collectors for the scanner daemon
// and exposes an HTTP endpoint for scraping.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is a no-op, so
// tests and metric-less CLI runs skip registration entirely.
type Metrics struct {
	ScansTotal          *prometheus.CounterVec
	ScanDuration        prometheus.Histogram
	ExtractionFailures  prometheus.Counter
	FindingsTotal       *prometheus.CounterVec
	ReportsGenerated    prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoaudit_scans_total",
				Help: "Total evidence scans by strategy.",
			},
			[]string{"strategy"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autoaudit_scan_duration_seconds",
				Help:    "End-to-end single-evidence scan latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ExtractionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autoaudit_extraction_failures_total",
				Help: "Total evidence files whose text extraction failed.",
			},
		),
		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoaudit_findings_total",
				Help: "Total findings by Pass/Fail outcome marker.",
			},
			[]string{"outcome"},
		),
		ReportsGenerated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autoaudit_reports_generated_total",
				Help: "Total PDF reports generated.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoaudit_http_requests_total",
				Help: "Total HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoaudit_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10},
			},
			[]string{"method", "path"},
		),
	}

	prometheus.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.ExtractionFailures,
		m.FindingsTotal,
		m.ReportsGenerated,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// ObserveScan records one completed single-evidence scan.
func (m *Metrics) ObserveScan(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(strategy).Inc()
	m.ScanDuration.Observe(d.Seconds())
}

// CountFinding records one finding row by its outcome marker.
func (m *Metrics) CountFinding(outcome string) {
	if m == nil {
		return
	}
	m.FindingsTotal.WithLabelValues(outcome).Inc()
}

// CountExtractionFailure records one failed extraction.
func (m *Metrics) CountExtractionFailure() {
	if m == nil {
		return
	}
	m.ExtractionFailures.Inc()
}

// CountReport records one generated PDF.
func (m *Metrics) CountReport() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer serves /metrics on its own port and returns a shutdown func.
func StartServer(port int, logger *slog.Logger) func(context.Context) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		logger.Info("metrics server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv.Shutdown
}
