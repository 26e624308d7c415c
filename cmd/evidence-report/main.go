// Command evidence-report generates a single PDF compliance report for one
// evidence file. Extraction failures are fatal: a report without extracted
// text has nothing to assess.
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
	"github.com/Hasstatas/MFA-scanner/internal/report"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
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
		file       = flag.String("file", "", "evidence file to assess (required)")
		user       = flag.String("user", "", "user id recorded in the report")
		strategies = flag.String("strategies", "", "comma-separated strategy names (default: all)")
		out        = flag.String("out", "", "output directory for the PDF (defaults to config resultsDir)")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: -file is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := slog.Default()

	if *user == "" {
		*user = cfg.User
	}
	if *out == "" {
		*out = cfg.Paths.ResultsDir
	}

	store, err := rules.LoadStore()
	if err != nil {
		logger.Error("failed to load rule pack", "error", err)
		os.Exit(1)
	}

	var names []string
	for _, tok := range strings.Split(*strategies, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if canonical, ok := constants.CanonicalStrategy(tok); ok {
			tok = string(canonical)
		}
		names = append(names, tok)
	}

	engine := ocr.NewTesseractEngine(ocr.Config{Language: cfg.OCR.Language, PSM: cfg.OCR.PSM}, logger)
	extractor := extract.NewExtractor(engine, logger)
	svc := report.NewService(store, extractor, *out, cfg.Paths.PreviewsDir, logger)

	rep, err := svc.Generate(context.Background(), *user, *file, names)
	if err != nil {
		logger.Error("report generation failed", "file", *file, "error", err)
		os.Exit(1)
	}

	matched := 0
	for _, s := range rep.Sections {
		if len(s.Matched) > 0 {
			matched++
		}
	}
	logger.Info("report saved",
		"path", rep.OutputPath,
		"sections", len(rep.Sections),
		"matched", matched)
}
