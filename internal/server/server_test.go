package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Hasstatas/MFA-scanner/internal/config"
	"github.com/Hasstatas/MFA-scanner/internal/extract"
	"github.com/Hasstatas/MFA-scanner/internal/report"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (extract.Result, error) {
	if f.err != nil {
		return extract.Result{}, f.err
	}
	return extract.Result{Text: f.text}, nil
}

func newTestServer(t *testing.T, fx *fakeExtractor) *Server {
	t.Helper()
	store, err := rules.LoadStore()
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	outDir := t.TempDir()
	reports := report.NewService(store, fx, outDir, t.TempDir(), nil)
	cfg := config.ServerConfig{Port: 0, MaxUploadBytes: 32 << 20}
	return New(store, reports, nil, cfg, t.TempDir(), outDir, nil)
}

func multipartScan(t *testing.T, strategy, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("strategy", strategy); err != nil {
		t.Fatal(err)
	}
	if err := mw.WriteField("user_id", "tester"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile("evidence", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func TestStrategiesEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/strategies", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Strategies []string `json:"strategies"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Strategies) != 8 {
		t.Errorf("strategies = %v, want 8", resp.Strategies)
	}
}

func TestScanEndpoint_HappyPath(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{text: "privileged access requests require approval"})
	body, contentType := multipartScan(t, "Restrict Admin Privileges", "evidence.png", "img-bytes")

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Strategy string `json:"strategy"`
		File     string `json:"file"`
		Rows     []struct {
			TestID   string `json:"test_id"`
			PassFail string `json:"pass_fail"`
		} `json:"rows"`
		Reports []string `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Strategy != "Restrict Admin Privileges" {
		t.Errorf("strategy = %q", resp.Strategy)
	}
	if resp.File != "evidence.png" {
		t.Errorf("file = %q", resp.File)
	}
	if len(resp.Rows) == 0 {
		t.Error("expected finding rows")
	}
	if len(resp.Reports) != 1 {
		t.Fatalf("reports = %v", resp.Reports)
	}
}

func TestScanEndpoint_StoresUploadInUploadDir(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{text: "mfa enabled"})
	body, contentType := multipartScan(t, "Multi-Factor Authentication", "upload.png", "img")

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if _, err := os.Stat(filepath.Join(srv.uploadDir, "upload.png")); err != nil {
		t.Errorf("upload not stored in upload dir: %v", err)
	}
}

func TestScanEndpoint_UnknownStrategy(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})
	body, contentType := multipartScan(t, "Bogus Strategy", "x.png", "y")

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestScanEndpoint_ExtractionFailure(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{err: errors.New("ocr broke")})
	body, contentType := multipartScan(t, "Application Control", "x.png", "y")

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
	}
}

func TestReportEndpoint_ConfinedToResultsDir(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/api/report?path=/etc/passwd", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/report?path="+filepath.Join(srv.outDir, "missing.pdf"), nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestScanEndpoint_ServesGeneratedReport(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{text: "no whitelist configured"})
	body, contentType := multipartScan(t, "Application Control", "shot.png", "img")

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scan status = %d", rec.Code)
	}
	var resp struct {
		Reports []string `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reports) != 1 {
		t.Fatalf("reports = %v", resp.Reports)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/report?path="+resp.Reports[0], nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response is not a PDF")
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeExtractor{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
