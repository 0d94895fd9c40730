package export

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	platformerrors "medinsight-server-go/internal/platform/errors"

	"medinsight-server-go/internal/domain/session"

	"github.com/go-pdf/fpdf"
)

const (
	pageWidthMM = 210 // A4 portrait

	// Embedded study image box, 4in by 3in.
	imageWidthMM  = 101.6
	imageHeightMM = 76.2
)

// pdfImageType maps intake formats onto the subset fpdf can embed.
func pdfImageType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG"
	case "png":
		return "PNG"
	case "gif":
		return "GIF"
	default:
		return ""
	}
}

func renderPDF(result *session.ReportResult, patient session.PatientInfo, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Title.
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(30, 58, 138)
	pdf.CellFormat(0, 12, "RADIOLOGY ANALYSIS REPORT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Report type and date line.
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6,
		"Type: "+result.ReportType+" | Date: "+now.Format("2006-01-02 15:04"),
		"", 1, "L", false, 0, "")

	writePatientBlock(pdf, patient)

	if result.Image != nil {
		if imgType := pdfImageType(result.Image.Format); imgType != "" {
			pdf.Ln(4)
			opts := fpdf.ImageOptions{ImageType: imgType}
			pdf.RegisterImageOptionsReader("study", opts, bytes.NewReader(result.Image.Bytes))
			x := (pageWidthMM - imageWidthMM) / 2
			pdf.ImageOptions("study", x, pdf.GetY(), imageWidthMM, imageHeightMM, true, opts, 0, "")
		}
	}

	// Report body, one paragraph per non-empty line. Marker-prefixed lines
	// (markdown headings, bold spans, numbered sections) render as
	// sub-headings.
	pdf.Ln(6)
	for _, line := range strings.Split(result.ReportText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if heading, ok := headingText(line); ok {
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, heading, "", "L", false)
		} else {
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, line, "", "L", false)
		}
		pdf.Ln(1)
	}

	// Disclaimer.
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(220, 38, 38)
	pdf.MultiCell(0, 6, "AI-generated. Requires professional validation.", "1", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindExport, "export.pdf", "render document", err)
	}
	return buf.Bytes(), nil
}

// headingText reports whether the line is a section heading and returns it
// with its markers stripped.
func headingText(line string) (string, bool) {
	switch {
	case strings.HasPrefix(line, "#"):
		return strings.TrimSpace(strings.TrimLeft(line, "#")), true
	case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") && len(line) > 4:
		return strings.TrimSuffix(strings.TrimPrefix(line, "**"), "**"), true
	}
	if i := strings.IndexByte(line, '.'); i > 0 && i <= 2 {
		if _, err := strconv.Atoi(line[:i]); err == nil {
			return line, true
		}
	}
	return "", false
}

func writePatientBlock(pdf *fpdf.Fpdf, patient session.PatientInfo) {
	fields := []struct {
		label string
		value string
	}{
		{"Patient ID", patient.ID},
		{"Age", patient.Age},
		{"Gender", patient.Gender},
		{"Referring Physician", patient.Physician},
	}

	wrote := false
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !wrote {
			pdf.Ln(3)
			wrote = true
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 5, f.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, f.value, "", 1, "L", false, 0, "")
	}
}
