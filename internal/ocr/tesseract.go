package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	// Register decoders for the supported screenshot formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TesseractEngine implements Engine over the gosseract client.
type TesseractEngine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
	logger        *slog.Logger
}

func NewTesseractEngine(cfg Config, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	return &TesseractEngine{cfg: cfg, clientFactory: gosseract.NewClient, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize decodes the image to reject unreadable input early, then hands
// the original bytes to Tesseract.
func (e *TesseractEngine) Recognize(ctx context.Context, img []byte) (string, error) {
	if _, _, err := image.Decode(bytes.NewReader(img)); err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer func() {
		if err := c.Close(); err != nil {
			e.logger.Warn("closing tesseract client", "error", err)
		}
	}()

	if err := c.SetLanguage(e.cfg.Language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(e.cfg.PSM)); err != nil {
		return "", fmt.Errorf("set psm: %w", err)
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	e.logger.Debug("ocr ok", "engine", e.Name(), "bytes_in", len(img), "chars_out", len(text))
	return text, nil
}
