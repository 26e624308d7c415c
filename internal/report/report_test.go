package report

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hasstatas/MFA-scanner/internal/common"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

type fakeExtractor struct {
	text    string
	preview bool
	err     error
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (extract.Result, error) {
	if f.err != nil {
		return extract.Result{}, f.err
	}
	res := extract.Result{Text: f.text}
	if f.preview {
		res.PreviewPath = path
	}
	return res, nil
}

func newTestService(t *testing.T, fx *fakeExtractor) *Service {
	t.Helper()
	store, err := rules.LoadStore()
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	return NewService(store, fx, t.TempDir(), t.TempDir(), nil)
}

func TestGenerate_AllStrategiesByDefault(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{text: "no whitelist configured"})
	evidence := filepath.Join(t.TempDir(), "screenshot.png")
	if err := os.WriteFile(evidence, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Generate(context.Background(), "tester", evidence, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rep.Sections) != 8 {
		t.Fatalf("sections = %d, want 8", len(rep.Sections))
	}

	var ac *Section
	for i := range rep.Sections {
		if rep.Sections[i].Strategy == "Application Control" {
			ac = &rep.Sections[i]
		}
	}
	if ac == nil {
		t.Fatal("Application Control section missing")
	}
	found := false
	for _, m := range ac.Matched {
		if m == "whitelist" {
			found = true
		}
	}
	if !found {
		t.Errorf("AC matched = %v, want whitelist", ac.Matched)
	}
	if len(ac.Unmatched) == 0 {
		t.Error("expected unmatched indicators listed")
	}

	data, err := os.ReadFile(rep.OutputPath)
	if err != nil {
		t.Fatalf("reading output pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF (starts %q)", data[:min(8, len(data))])
	}
}

func TestGenerate_ExtractionFailureIsFatal(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{err: errors.New("unreadable")})
	_, err := svc.Generate(context.Background(), "tester", "broken.png", nil)
	if !errors.Is(err, common.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}

func TestGenerate_SingleStrategy(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{text: "backup failed"})
	evidence := filepath.Join(t.TempDir(), "backup.txt")
	if err := os.WriteFile(evidence, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Generate(context.Background(), "tester", evidence, []string{"Regular Backups"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rep.Sections) != 1 || rep.Sections[0].Strategy != "Regular Backups" {
		t.Errorf("sections = %+v", rep.Sections)
	}
}

func TestGenerate_CopiesPreviewIntoPreviewsDir(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{text: "mfa enabled", preview: true})
	evidence := filepath.Join(t.TempDir(), "shot.png")
	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(evidence, img.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err := svc.Generate(context.Background(), "tester", evidence, []string{"Multi-Factor Authentication"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rep.PreviewPath == evidence {
		t.Fatal("PreviewPath still points at the source file")
	}
	if filepath.Dir(rep.PreviewPath) != svc.previewsDir {
		t.Errorf("PreviewPath = %s, want it under %s", rep.PreviewPath, svc.previewsDir)
	}
	data, err := os.ReadFile(rep.PreviewPath)
	if err != nil {
		t.Fatalf("reading preview copy: %v", err)
	}
	if !bytes.Equal(data, img.Bytes()) {
		t.Error("preview copy differs from the source image")
	}
}

func TestGenerate_UnknownStrategy(t *testing.T) {
	svc := newTestService(t, &fakeExtractor{text: "x"})
	_, err := svc.Generate(context.Background(), "t", "a.txt", []string{"Bogus"})
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
