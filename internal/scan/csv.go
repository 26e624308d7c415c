package scan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WriteCSV writes the header plus rows to path. If the target is locked or
// unwritable (a reviewer has the last report open in Excel, typically), it
// retries once with a "_temp" suffix. Returns the path actually written.
func WriteCSV(path string, rows []Row) (string, error) {
	written, err := writeCSVFile(path, rows)
	if err == nil {
		return written, nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return "", err
	}

	ext := filepath.Ext(path)
	fallback := strings.TrimSuffix(path, ext) + "_temp" + ext
	return writeCSVFile(fallback, rows)
}

func writeCSVFile(path string, rows []Row) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
