package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1 of every scan: evidence file -> plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (Result, error)
}

type Result struct {
	Text        string
	Format      string // constants.IMAGE | PDF | DOCX | HTML | TEXT
	PreviewPath string // image evidence previews as itself; others have none
	Pages       int
	Duration    time.Duration
	Warnings    []string
}
