package report

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/Hasstatas/MFA-scanner/constants"
)

// Image formats fpdf can embed directly.
var embeddableImages = map[string]struct{}{
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {},
}

func renderPDF(rep *Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Essential Eight Evidence Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	meta := [][2]string{
		{"Report ID", rep.ID.String()},
		{"User", rep.UserID},
		{"Evidence", filepath.Base(rep.EvidencePath)},
		{"Generated", rep.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	for _, kv := range meta {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}

	if rep.PreviewPath != "" {
		ext := constants.NormalizeExt(filepath.Ext(rep.PreviewPath))
		if _, ok := embeddableImages[ext]; ok {
			pdf.Ln(2)
			pdf.ImageOptions(rep.PreviewPath, 10, pdf.GetY(), 90, 0, true,
				fpdf.ImageOptions{ReadDpi: true}, 0, "")
			pdf.Ln(2)
		}
	}

	if rep.TextPreview != "" {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, "Extracted Text", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, rep.TextPreview, "", "L", false)
	}

	for _, sec := range rep.Sections {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, sec.Strategy, "B", 1, "L", false, 0, "")
		if sec.Description != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(0, 5, sec.Description, "", "L", false)
		}

		pdf.SetFont("Helvetica", "", 10)
		if len(sec.Matched) == 0 {
			pdf.CellFormat(0, 6, "Compliant: no indicators matched.", "", 1, "L", false, 0, "")
		} else {
			pdf.CellFormat(0, 6, "Matched indicators:", "", 1, "L", false, 0, "")
			for _, m := range sec.Matched {
				pdf.MultiCell(0, 5, "  [x] "+m, "", "L", false)
			}
		}
		if len(sec.Unmatched) > 0 {
			pdf.CellFormat(0, 6, "Indicators not found:", "", 1, "L", false, 0, "")
			for _, u := range sec.Unmatched {
				pdf.MultiCell(0, 5, "  [ ] "+u, "", "L", false)
			}
		}

		for _, f := range sec.Findings {
			pdf.Ln(1)
			pdf.SetFont("Helvetica", "B", 10)
			title := string(f.Outcome)
			if f.TestID != "" {
				title = f.TestID + " - " + title
			}
			pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			if f.SubStrategy != "" {
				pdf.MultiCell(0, 5, f.SubStrategy, "", "L", false)
			}
			if f.Recommendation != "" {
				pdf.MultiCell(0, 5, "Recommendation: "+f.Recommendation, "", "L", false)
			}
			if len(f.Evidence) > 0 {
				pdf.MultiCell(0, 5, "Evidence: "+strings.Join(f.Evidence, "; "), "", "L", false)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
