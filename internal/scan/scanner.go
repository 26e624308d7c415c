// Package scan runs batch scans: evidence directory x selected strategies,
// one report row per evaluation.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hasstatas/MFA-scanner/constants"
	"github.com/Hasstatas/MFA-scanner/internal/common"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/ingest"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

// Row is one CSV report row. Column order is fixed by Header.
type Row struct {
	UserID         string
	Image          string
	Strategy       string
	TestID         string
	SubStrategy    string
	Level          string
	Outcome        constants.Outcome
	Priority       constants.Priority
	Recommendation string
	Evidence       string
}

// Header is the CSV column contract.
var Header = []string{
	"UserID", "Image", "Strategy", "TestID", "Sub-Strategy",
	"ML Level", "Pass/Fail", "Priority", "Recommendation", "Evidence Extract",
}

func (r Row) record() []string {
	return []string{
		r.UserID, r.Image, r.Strategy, r.TestID, r.SubStrategy,
		r.Level, string(r.Outcome), string(r.Priority), r.Recommendation, r.Evidence,
	}
}

type Options struct {
	UserID     string
	InputDir   string
	Strategies []string // empty = all
}

type Summary struct {
	Rows         []Row
	FilesScanned int
	Extractions  int
	Failures     int
	Duration     time.Duration
}

// Service wires the rule store and text extractor into the batch loop.
type Service struct {
	store     *rules.Store
	extractor extract.TextExtractor
	logger    *slog.Logger
}

func NewService(store *rules.Store, extractor extract.TextExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, extractor: extractor, logger: logger}
}

// Scan evaluates every evidence file against every selected strategy. Each
// (file, strategy) evaluation contributes at least one row: findings when
// rules hit, NO_MATCH when none did, NO_TEXT when extraction failed or read
// nothing. Per-file failures never abort the batch.
func (s *Service) Scan(ctx context.Context, opts Options) (*Summary, error) {
	start := time.Now()

	names := opts.Strategies
	if len(names) == 0 {
		names = s.store.Names()
	}

	summary := &Summary{}
	seen := make(map[string]struct{})

	for _, name := range names {
		rule, ok := s.store.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown strategy %q", common.ErrInvalidInput, name)
		}
		evaluator, _ := s.store.EvaluatorFor(rule.Name)

		files, usedDir, err := ingest.EvidenceForStrategy(opts.InputDir, rule.Name)
		if err != nil {
			return nil, fmt.Errorf("listing evidence for %s: %w", rule.Name, err)
		}
		if len(files) == 0 {
			s.logger.Warn("no evidence files for strategy", "strategy", rule.Name, "dir", opts.InputDir)
			continue
		}
		s.logger.Info("scanning strategy", "strategy", rule.Name, "dir", usedDir, "files", len(files))

		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				summary.FilesScanned++
			}

			image := filepath.Base(path)
			res, err := s.extractor.Extract(ctx, path)
			summary.Extractions++
			if err != nil || strings.TrimSpace(res.Text) == "" {
				if err != nil {
					s.logger.Error("extraction failed", "path", path, "error", err)
				}
				summary.Failures++
				summary.Rows = append(summary.Rows, Row{
					UserID:         opts.UserID,
					Image:          image,
					Strategy:       rule.Name,
					Outcome:        constants.OutcomeNoText,
					Priority:       constants.PriorityLow,
					Recommendation: "OCR could not read this file. Try a clearer screenshot.",
				})
				continue
			}

			findings := evaluator.Evaluate(res.Text, image)
			if len(findings) == 0 {
				summary.Rows = append(summary.Rows, Row{
					UserID:         opts.UserID,
					Image:          image,
					Strategy:       rule.Name,
					Outcome:        constants.OutcomeNoMatch,
					Priority:       constants.PriorityLow,
					Recommendation: "No rule matched this file.",
				})
				continue
			}
			for _, f := range findings {
				// heuristic hits list indicators comma-separated; checklist
				// evaluator rows keep the semicolon form
				sep := "; "
				if f.Outcome == constants.OutcomeHit {
					sep = ", "
				}
				summary.Rows = append(summary.Rows, Row{
					UserID:         opts.UserID,
					Image:          image,
					Strategy:       rule.Name,
					TestID:         f.TestID,
					SubStrategy:    f.SubStrategy,
					Level:          f.Level,
					Outcome:        f.Outcome,
					Priority:       f.Priority,
					Recommendation: f.Recommendation,
					Evidence:       strings.Join(f.Evidence, sep),
				})
			}
		}
	}

	summary.Duration = time.Since(start)
	s.logger.Info("scan complete",
		"files", summary.FilesScanned,
		"rows", len(summary.Rows),
		"failures", summary.Failures,
		"elapsed_ms", summary.Duration.Milliseconds(),
	)
	return summary, nil
}
