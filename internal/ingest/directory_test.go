package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListEvidence_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "A.txt"))
	touch(t, filepath.Join(dir, "ignore.exe"))
	touch(t, filepath.Join(dir, ".hidden.png"))
	touch(t, filepath.Join(dir, "nested", "c.pdf"))

	files, stats, err := ListEvidence(dir)
	if err != nil {
		t.Fatalf("ListEvidence: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("files = %v, want 3 entries", files)
	}
	wantOrder := []string{"A.txt", "b.png", "c.pdf"}
	for i, want := range wantOrder {
		if filepath.Base(files[i]) != want {
			t.Errorf("files[%d] = %s, want %s", i, filepath.Base(files[i]), want)
		}
	}
	if stats.Matched != 3 {
		t.Errorf("Matched = %d, want 3", stats.Matched)
	}
}

func TestListEvidence_MissingDirIsEmpty(t *testing.T) {
	files, _, err := ListEvidence(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListEvidence: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v, want empty", files)
	}
}

func TestEvidenceForStrategy_PrefersMappedSubdir(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "fallback.png"))
	touch(t, filepath.Join(base, "application_control", "ac.png"))

	files, used, err := EvidenceForStrategy(base, "Application Control")
	if err != nil {
		t.Fatalf("EvidenceForStrategy: %v", err)
	}
	if used != filepath.Join(base, "application_control") {
		t.Errorf("used dir = %s", used)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "ac.png" {
		t.Errorf("files = %v", files)
	}
}

func TestEvidenceForStrategy_FallsBackToBase(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "fallback.png"))

	files, used, err := EvidenceForStrategy(base, "Regular Backups")
	if err != nil {
		t.Fatalf("EvidenceForStrategy: %v", err)
	}
	if used != base {
		t.Errorf("used dir = %s, want base", used)
	}
	if len(files) != 1 {
		t.Errorf("files = %v", files)
	}
}

func TestEvidenceForStrategy_FallbackIsFlat(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "fallback.png"))
	// web uploads and other strategies' evidence live in subdirs of base and
	// must not leak into a flat fallback scan
	touch(t, filepath.Join(base, "tmp", "upload.png"))
	touch(t, filepath.Join(base, "application_control", "ac.png"))

	files, used, err := EvidenceForStrategy(base, "Regular Backups")
	if err != nil {
		t.Fatalf("EvidenceForStrategy: %v", err)
	}
	if used != base {
		t.Errorf("used dir = %s, want base", used)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "fallback.png" {
		t.Errorf("files = %v, want only fallback.png", files)
	}
}
