package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.InputDir != "evidence" {
		t.Errorf("InputDir = %q, want evidence", cfg.Paths.InputDir)
	}
	// uploads must land outside the batch-scan root, or web uploads get
	// re-scanned by later batch runs
	if cfg.Paths.UploadDir != "evidence/tmp" {
		t.Errorf("UploadDir = %q, want evidence/tmp", cfg.Paths.UploadDir)
	}
	if cfg.Paths.UploadDir == cfg.Paths.InputDir {
		t.Error("UploadDir must differ from InputDir")
	}
	if cfg.Paths.CSVPath != "scan_report.csv" {
		t.Errorf("CSVPath = %q, want scan_report.csv", cfg.Paths.CSVPath)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("OCR.Language = %q, want eng", cfg.OCR.Language)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("user: auditor\npaths:\n  inputDir: /data/evidence\nlogging:\n  level: debug\n  format: text\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User != "auditor" {
		t.Errorf("User = %q, want auditor", cfg.User)
	}
	if cfg.Paths.InputDir != "/data/evidence" {
		t.Errorf("InputDir = %q, want /data/evidence", cfg.Paths.InputDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// untouched fields keep defaults
	if cfg.Paths.CSVPath != "scan_report.csv" {
		t.Errorf("CSVPath = %q, want default", cfg.Paths.CSVPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTOAUDIT_USER", "envuser")
	t.Setenv("AUTOAUDIT_INPUT_DIR", "/env/evidence")
	t.Setenv("AUTOAUDIT_SERVER_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User != "envuser" {
		t.Errorf("User = %q, want envuser", cfg.User)
	}
	if cfg.Paths.InputDir != "/env/evidence" {
		t.Errorf("InputDir = %q, want /env/evidence", cfg.Paths.InputDir)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
