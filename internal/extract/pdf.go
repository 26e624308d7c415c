package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages caps extraction; compliance evidence is short, and PDF parsing
// is the most expensive path.
const maxPDFPages = 20

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("closing pdf", "path", path, "error", cerr)
		}
	}()

	total := r.NumPage()
	pages := total
	var warnings []string
	if pages > maxPDFPages {
		pages = maxPDFPages
		warnings = append(warnings, fmt.Sprintf("pdf truncated to first %d of %d pages", maxPDFPages, total))
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return Result{Text: sb.String(), Pages: pages, Warnings: warnings}, nil
}
