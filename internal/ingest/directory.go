// Package ingest discovers evidence files on disk for a scan.
package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Hasstatas/MFA-scanner/constants"
)

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ListEvidence walks root recursively and returns supported evidence files,
// sorted by name. Hidden files and directories are skipped; walk errors on
// individual entries do not abort the walk.
func ListEvidence(root string) ([]string, DirStats, error) {
	var files []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			return nil // continue walking
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsSupportedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, stats, nil
}

// EvidenceForStrategy prefers the strategy's mapped subdirectory under base,
// falling back to the files directly in base when the subdirectory is empty
// or missing. The fallback is flat on purpose: other strategies' subdirs and
// the web upload area live under base and must not be swept into the batch.
func EvidenceForStrategy(base, strategyName string) ([]string, string, error) {
	if sub, ok := constants.EvidenceSubdir(strategyName); ok {
		preferred := filepath.Join(base, sub)
		files, _, err := ListEvidence(preferred)
		if err == nil && len(files) > 0 {
			return files, preferred, nil
		}
	}
	files, err := listFlat(base)
	return files, base, err
}

// listFlat returns the supported evidence files directly in dir, no recursion.
func listFlat(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) || !constants.IsSupportedExt(filepath.Ext(e.Name())) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(files[i])) < strings.ToLower(filepath.Base(files[j]))
	})
	return files, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
