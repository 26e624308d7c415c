// Package server is the HTTP front end: strategy listing, evidence upload and
// scan, and report download.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Hasstatas/MFA-scanner/internal/config"
	"github.com/Hasstatas/MFA-scanner/internal/metrics"
	"github.com/Hasstatas/MFA-scanner/internal/report"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

type Server struct {
	store     *rules.Store
	reports   *report.Service
	metrics   *metrics.Metrics
	cfg       config.ServerConfig
	uploadDir string
	outDir    string
	logger    *slog.Logger
}

func New(store *rules.Store, reports *report.Service, m *metrics.Metrics, cfg config.ServerConfig, uploadDir, outDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if uploadDir == "" {
		uploadDir = "evidence/tmp"
	}
	return &Server{
		store:     store,
		reports:   reports,
		metrics:   m,
		cfg:       cfg,
		uploadDir: uploadDir,
		outDir:    outDir,
		logger:    logger,
	}
}

// Routes builds the handler with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/strategies", s.handleStrategies)
	mux.HandleFunc("POST /api/scan", s.handleScan)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// outermost first: logging sees every request, CORS runs before handlers
	var h http.Handler = mux
	h = corsMiddleware(h)
	h = s.loggingMiddleware(h)
	return h
}

// HTTPServer builds the configured http.Server for this front end.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
}
