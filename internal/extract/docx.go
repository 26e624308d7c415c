package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docx is OOXML: a zip whose visible text lives in word/document.xml and the
// header parts.
func (e *Extractor) extractDOCX(ctx context.Context, path string) (Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Result{}, fmt.Errorf("open docx: %w", err)
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			e.logger.Warn("closing docx", "path", path, "error", cerr)
		}
	}()

	var parts []string
	for _, f := range zr.File {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		if f.Name != "word/document.xml" && !strings.HasPrefix(f.Name, "word/header") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		text := textFromXML(rc, MaxTextBytes)
		if cerr := rc.Close(); cerr != nil {
			e.logger.Warn("closing docx part", "part", f.Name, "error", cerr)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return Result{Text: strings.Join(parts, "\n")}, nil
}

// textFromXML concatenates character data from an XML stream, capped at limit.
func textFromXML(r io.Reader, limit int) string {
	decoder := xml.NewDecoder(io.LimitReader(r, int64(limit)))
	var buf bytes.Buffer
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if cd, ok := token.(xml.CharData); ok {
			buf.Write(cd)
			buf.WriteByte(' ')
		}
		if buf.Len() >= limit {
			break
		}
	}
	return strings.TrimSpace(buf.String())
}
