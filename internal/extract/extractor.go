// Package extract routes evidence files to the right text extraction path:
// OCR for screenshots, native parsing for PDF/DOCX/HTML, direct reads for
// text exports.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Hasstatas/MFA-scanner/constants"
	"github.com/Hasstatas/MFA-scanner/internal/common"
	"github.com/Hasstatas/MFA-scanner/internal/ocr"
)

// MaxTextBytes caps how much of a text-like file is read.
const MaxTextBytes = 1 << 20

type Extractor struct {
	engine ocr.Engine
	logger *slog.Logger
}

func NewExtractor(engine ocr.Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger}
}

// Extract picks an extraction path based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("starting extraction", "path", path, "ext", ext, "format", format)

	var res Result
	var err error
	switch format {
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.DOCX:
		res, err = e.extractDOCX(ctx, path)
	case constants.HTML:
		res, err = e.extractHTML(path)
	case constants.TEXT:
		res, err = e.extractText(path)
	default:
		e.logger.Error("unsupported evidence extension", "extension", ext)
		return Result{}, fmt.Errorf("%w: %q", common.ErrUnsupported, ext)
	}

	res.Format = format
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.NewAppError("EXTRACTION_FAILED", path, err)
	}
	return res, nil
}

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	text, err := e.engine.Recognize(ctx, data)
	if err != nil {
		return Result{}, err
	}
	// the screenshot itself is its own preview
	return Result{Text: text, PreviewPath: path, Pages: 1}, nil
}

func (e *Extractor) extractText(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("closing evidence file", "path", path, "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(f, MaxTextBytes))
	if err != nil {
		return Result{}, err
	}
	return Result{Text: string(data)}, nil
}
