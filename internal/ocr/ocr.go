// Package ocr wraps the external Tesseract engine behind a small interface so
// scanning code and tests never depend on the engine binary being installed.
package ocr

import "context"

// Engine is the OCR collaborator contract: encoded image bytes in, plain text
// out. No bit-exact output format is defined or required.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) (string, error)
}

type Config struct {
	Language string // trained-data language, default "eng"
	PSM      int    // page segmentation mode; 6 suits uniform blocks of UI text
}
