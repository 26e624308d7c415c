package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hasstatas/MFA-scanner/internal/common"
	"github.com/Hasstatas/MFA-scanner/internal/rules"
)

type scanResponse struct {
	Strategy string       `json:"strategy"`
	UserID   string       `json:"user_id"`
	File     string       `json:"file"`
	Rows     []findingRow `json:"rows"`
	Reports  []string     `json:"reports"`
}

type findingRow struct {
	TestID         string   `json:"test_id"`
	SubStrategy    string   `json:"sub_strategy"`
	DetectedLevel  string   `json:"detected_level"`
	PassFail       string   `json:"pass_fail"`
	Priority       string   `json:"priority"`
	Recommendation string   `json:"recommendation"`
	Evidence       []string `json:"evidence"`
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"strategies": s.store.Names()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScan accepts a multipart upload (strategy, user_id, evidence), stores
// the evidence under the upload dir, runs the single-file pipeline for the
// chosen strategy, and answers with the findings plus generated report paths.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	strategy := r.FormValue("strategy")
	rule, ok := s.store.Get(strategy)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown strategy")
		return
	}
	userID := r.FormValue("user_id")
	if userID == "" {
		userID = "user"
	}

	file, header, err := r.FormFile("evidence")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "evidence file is required")
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("closing upload", "error", cerr)
		}
	}()

	dst, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("saving upload failed", "file", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "could not store evidence")
		return
	}

	rep, err := s.reports.Generate(r.Context(), userID, dst, []string{rule.Name})
	if err != nil {
		if errors.Is(err, common.ErrExtraction) || errors.Is(err, common.ErrUnsupported) {
			s.metrics.CountExtractionFailure()
			s.writeError(w, http.StatusUnprocessableEntity, "could not extract text from evidence")
			return
		}
		s.logger.Error("scan failed", "file", dst, "error", err)
		s.writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	s.metrics.ObserveScan(rule.Name, time.Since(start))
	s.metrics.CountReport()

	resp := scanResponse{
		Strategy: rule.Name,
		UserID:   userID,
		File:     filepath.Base(dst),
		Rows:     []findingRow{},
		Reports:  []string{rep.OutputPath},
	}
	for _, sec := range rep.Sections {
		for _, f := range sec.Findings {
			s.metrics.CountFinding(string(f.Outcome))
			resp.Rows = append(resp.Rows, toFindingRow(f))
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleReport serves a previously generated PDF. The path is confined to the
// results directory so the endpoint cannot read arbitrary files.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	reqPath := r.URL.Query().Get("path")
	if reqPath == "" {
		s.writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	abs, err := s.resolveReport(reqPath)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidInput):
			s.writeError(w, http.StatusBadRequest, "path outside results directory")
		case errors.Is(err, common.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "report not found")
		default:
			s.writeError(w, http.StatusInternalServerError, "results dir unavailable")
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(abs)+`"`)
	http.ServeFile(w, r, abs)
}

// resolveReport confines the requested path to the results directory and
// checks the report exists.
func (s *Server) resolveReport(reqPath string) (string, error) {
	outDir, err := filepath.Abs(s.outDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(reqPath)
	if err != nil || !strings.HasPrefix(abs, outDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", common.ErrInvalidInput, reqPath)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, filepath.Base(abs))
	}
	return abs, nil
}

func (s *Server) saveUpload(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}
	// basename only: uploads must not escape the upload dir
	dst := filepath.Join(s.uploadDir, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return "", err
	}
	return dst, f.Close()
}

func toFindingRow(f rules.Finding) findingRow {
	ev := f.Evidence
	if ev == nil {
		ev = []string{}
	}
	return findingRow{
		TestID:         f.TestID,
		SubStrategy:    f.SubStrategy,
		DetectedLevel:  f.Level,
		PassFail:       string(f.Outcome),
		Priority:       string(f.Priority),
		Recommendation: f.Recommendation,
		Evidence:       ev,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
