// Command autoauditd runs the compliance scan HTTP daemon: evidence upload,
// ad-hoc scans, and PDF report download, with Prometheus metrics on a
// separate port.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hasstatas/MFA-scanner/internal/config"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/logging"
	"github.com/Hasstatas/MFA-scanner/internal/metrics"
	"github.com/Hasstatas/MFA-scanner/internal/ocr"
	"github.com/Hasstatas/MFA-scanner/internal/report"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
	"github.com/Hasstatas/MFA-scanner/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := slog.Default()

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := rules.LoadStore()
	if err != nil {
		return fmt.Errorf("loading rule pack: %w", err)
	}

	engine := ocr.NewTesseractEngine(ocr.Config{Language: cfg.OCR.Language, PSM: cfg.OCR.PSM}, logger)
	extractor := extract.NewExtractor(engine, logger)
	reports := report.NewService(store, extractor, cfg.Paths.ResultsDir, cfg.Paths.PreviewsDir, logger)

	var m *metrics.Metrics
	var stopMetrics func(context.Context) error
	if cfg.Metrics.Enabled {
		m = metrics.New()
		stopMetrics = metrics.StartServer(cfg.Metrics.Port, logger)
	}

	srv := server.New(store, reports, m, cfg.Server, cfg.Paths.UploadDir, cfg.Paths.ResultsDir, logger)
	httpSrv := srv.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if stopMetrics != nil {
		if err := stopMetrics(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}
	logger.Info("daemon stopped")
	return nil
}
