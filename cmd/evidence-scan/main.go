// Command evidence-scan runs a batch compliance scan over an evidence
// directory and writes the CSV (and optionally XLSX) report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Hasstatas/MFA-scanner/constants"
	"github.com/Hasstatas/MFA-scanner/internal/config"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/logging"
	"github.com/Hasstatas/MFA-scanner/internal/ocr"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
	"github.com/Hasstatas/MFA-scanner/internal/scan"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file (optional)")
		dir        = flag.String("dir", "", "evidence directory (defaults to config inputDir)")
		user       = flag.String("user", "", "user id recorded in report rows")
		strategies = flag.String("strategies", "", "comma-separated strategy names or short forms (default: all)")
		out        = flag.String("out", "", "output CSV path (defaults to config csvPath)")
		xlsxOut    = flag.String("xlsx", "", "also write an XLSX workbook to this path (optional)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := slog.Default()

	if *dir == "" {
		*dir = cfg.Paths.InputDir
	}
	if *user == "" {
		*user = cfg.User
	}
	if *out == "" {
		*out = cfg.Paths.CSVPath
	}

	store, err := rules.LoadStore()
	if err != nil {
		logger.Error("failed to load rule pack", "error", err)
		os.Exit(1)
	}

	names, err := resolveStrategies(store, *strategies)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	engine := ocr.NewTesseractEngine(ocr.Config{Language: cfg.OCR.Language, PSM: cfg.OCR.PSM}, logger)
	extractor := extract.NewExtractor(engine, logger)
	svc := scan.NewService(store, extractor, logger)

	summary, err := svc.Scan(context.Background(), scan.Options{
		UserID:     *user,
		InputDir:   *dir,
		Strategies: names,
	})
	if err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}

	written, err := scan.WriteCSV(*out, summary.Rows)
	if err != nil {
		logger.Error("writing csv failed", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("report saved", "path", written, "rows", len(summary.Rows))

	if *xlsxOut != "" {
		data, err := scan.WriteXLSX(summary.Rows)
		if err != nil {
			logger.Error("building xlsx failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, data, 0o644); err != nil {
			logger.Error("writing xlsx failed", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
		logger.Info("workbook saved", "path", *xlsxOut)
	}
}

// resolveStrategies turns "mfa,Regular Backups" into canonical names.
func resolveStrategies(store *rules.Store, arg string) ([]string, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil // all
	}
	var names []string
	for _, tok := range strings.Split(arg, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if canonical, ok := constants.CanonicalStrategy(tok); ok {
			tok = string(canonical)
		}
		if _, ok := store.Get(tok); ok {
			names = append(names, tok)
			continue
		}
		return nil, fmt.Errorf("unknown strategy %q (use rulecheck to list strategies)", tok)
	}
	return names, nil
}
