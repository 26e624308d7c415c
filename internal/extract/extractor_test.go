package extract

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hasstatas/MFA-scanner/constants"
	"github.com/Hasstatas/MFA-scanner/internal/common"
)

// fakeEngine returns canned OCR text without touching Tesseract.
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	return f.text, f.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtract_TextFile(t *testing.T) {
	e := NewExtractor(&fakeEngine{}, nil)
	path := writeFile(t, t.TempDir(), "gpresult.txt", "Deny logon locally: Domain Users")

	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Format != constants.TEXT {
		t.Errorf("Format = %q, want TEXT", res.Format)
	}
	if !strings.Contains(res.Text, "Deny logon locally") {
		t.Errorf("text missing content: %q", res.Text)
	}
}

func TestExtract_Image_UsesEngine(t *testing.T) {
	e := NewExtractor(&fakeEngine{text: "no whitelist configured"}, nil)
	path := writeFile(t, t.TempDir(), "screenshot.png", "not-a-real-png")

	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "no whitelist configured" {
		t.Errorf("Text = %q", res.Text)
	}
	if res.PreviewPath != path {
		t.Errorf("PreviewPath = %q, want the screenshot itself", res.PreviewPath)
	}
}

func TestExtract_Image_EngineFailure(t *testing.T) {
	e := NewExtractor(&fakeEngine{err: errors.New("tesseract not installed")}, nil)
	path := writeFile(t, t.TempDir(), "screenshot.png", "junk")

	_, err := e.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("expected extraction error")
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		t.Errorf("error %v is not an AppError", err)
	}
}

func TestExtract_HTML_StripsChrome(t *testing.T) {
	html := `<html><body>
	  <script>var x = 1;</script>
	  <nav>Menu</nav>
	  <main><p>MFA disabled for 3 accounts</p></main>
	  <footer>Copyright</footer>
	</body></html>`
	e := NewExtractor(&fakeEngine{}, nil)
	path := writeFile(t, t.TempDir(), "report.html", html)

	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(res.Text, "MFA disabled") {
		t.Errorf("main content missing: %q", res.Text)
	}
	for _, stripped := range []string{"var x", "Menu", "Copyright"} {
		if strings.Contains(res.Text, stripped) {
			t.Errorf("%q not stripped: %q", stripped, res.Text)
		}
	}
}

func TestExtract_DOCX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evidence.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	doc, _ := zw.Create("word/document.xml")
	if _, err := doc.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>backup failed overnight</w:t></w:r></w:p></w:body></w:document>`)); err != nil {
		t.Fatal(err)
	}
	other, _ := zw.Create("word/styles.xml")
	if _, err := other.Write([]byte(`<w:styles><w:t>ignored styling</w:t></w:styles>`)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor(&fakeEngine{}, nil)
	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(res.Text, "backup failed overnight") {
		t.Errorf("document text missing: %q", res.Text)
	}
	if strings.Contains(res.Text, "ignored styling") {
		t.Errorf("non-document part leaked into text: %q", res.Text)
	}
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := NewExtractor(&fakeEngine{}, nil)
	path := writeFile(t, t.TempDir(), "evidence.exe", "binary")

	_, err := e.Extract(context.Background(), path)
	if !errors.Is(err, common.ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}
