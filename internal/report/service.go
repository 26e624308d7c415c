// Package report builds per-file executive summary PDFs: one evidence file
// evaluated against the selected strategies, one section per strategy.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Hasstatas/MFA-scanner/internal/common"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

// Section is one strategy's slice of the report.
type Section struct {
	Strategy    string
	Description string
	Matched     []string
	Unmatched   []string
	Findings    []rules.Finding
}

// Report is the assembled summary for a single evidence file.
type Report struct {
	ID           uuid.UUID
	UserID       string
	EvidencePath string
	PreviewPath  string
	GeneratedAt  time.Time
	TextPreview  string
	Sections     []Section
	OutputPath   string
}

type Service struct {
	store       *rules.Store
	extractor   extract.TextExtractor
	outDir      string
	previewsDir string
	logger      *slog.Logger
}

func NewService(store *rules.Store, extractor extract.TextExtractor, outDir, previewsDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if outDir == "" {
		outDir = "results/reports"
	}
	if previewsDir == "" {
		previewsDir = "results/previews"
	}
	return &Service{store: store, extractor: extractor, outDir: outDir, previewsDir: previewsDir, logger: logger}
}

// Generate extracts one evidence file, evaluates it against the named
// strategies (all eight when none are given), and writes the PDF. Extraction
// failure is fatal: no partial report is produced.
func (s *Service) Generate(ctx context.Context, userID, path string, strategies []string) (*Report, error) {
	start := time.Now()

	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrExtraction, path, err)
	}

	names := strategies
	if len(names) == 0 {
		names = s.store.Names()
	}

	rep := &Report{
		ID:           uuid.New(),
		UserID:       userID,
		EvidencePath: path,
		PreviewPath:  res.PreviewPath,
		GeneratedAt:  time.Now().UTC(),
		TextPreview:  clipText(res.Text, 300),
	}
	if res.PreviewPath != "" {
		if copied, err := s.writePreview(res.PreviewPath, rep.ID); err != nil {
			s.logger.Warn("preview copy failed", "source", res.PreviewPath, "error", err)
		} else {
			rep.PreviewPath = copied
		}
	}

	for _, name := range names {
		rule, ok := s.store.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown strategy %q", common.ErrInvalidInput, name)
		}
		evaluator, _ := s.store.EvaluatorFor(rule.Name)

		matched := rule.Match(res.Text)
		rep.Sections = append(rep.Sections, Section{
			Strategy:    rule.Name,
			Description: rule.Description,
			Matched:     matched,
			Unmatched:   unmatchedKeywords(rule, matched),
			Findings:    evaluator.Evaluate(res.Text, filepath.Base(path)),
		})
	}

	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("results dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	rep.OutputPath = filepath.Join(s.outDir, fmt.Sprintf("%s_%s.pdf", stem, rep.ID))

	data, err := renderPDF(rep)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(rep.OutputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	s.logger.Info("report.pdf.ok",
		"evidence", path,
		"output", rep.OutputPath,
		"sections", len(rep.Sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rep, nil
}

// writePreview copies the evidence image into the previews directory so the
// report keeps a stable snapshot even when the upload is later cleaned up.
func (s *Service) writePreview(src string, id uuid.UUID) (string, error) {
	if err := os.MkdirAll(s.previewsDir, 0o755); err != nil {
		return "", err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(s.previewsDir, fmt.Sprintf("%s_%s%s", stem, id, filepath.Ext(src)))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func unmatchedKeywords(rule *rules.StrategyRule, matched []string) []string {
	hit := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		hit[m] = struct{}{}
	}
	var out []string
	for _, kw := range rule.Keywords {
		if _, ok := hit[kw]; !ok {
			out = append(out, kw)
		}
	}
	return out
}

func clipText(s string, n int) string {
	t := strings.Join(strings.Fields(s), " ")
	if len(t) <= n {
		return t
	}
	for n > 0 && !utf8.RuneStart(t[n]) {
		n--
	}
	return t[:n] + "..."
}
