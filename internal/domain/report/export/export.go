// Package export renders the current session report into downloadable
// documents.
package export

import (
	"os"
	"path/filepath"
	"time"

	"medinsight-server-go/internal/platform/config"
	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"

	"medinsight-server-go/internal/domain/session"
)

// Artifact is a rendered export ready to be sent to the client.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Exporter turns session state into text and PDF documents.
type Exporter struct {
	tempDir string
	logger  *logging.Logger
	now     func() time.Time
}

// NewExporter builds an exporter. When cfg.TempDir is set, a copy of every
// rendered document is staged there as well.
func NewExporter(cfg config.ExportConfig, logger *logging.Logger) *Exporter {
	return &Exporter{
		tempDir: cfg.TempDir,
		logger:  logger,
		now:     time.Now,
	}
}

func (e *Exporter) filename(ext string) string {
	return "report_" + e.now().Format("20060102_150405") + ext
}

// stage writes a best-effort copy into the temp dir. Failures are logged and
// swallowed so the download itself is unaffected.
func (e *Exporter) stage(name string, data []byte) {
	if e.tempDir == "" {
		return
	}
	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		e.logger.WarnTag("EXPORT", "create staging dir: %v", err)
		return
	}
	path := filepath.Join(e.tempDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		e.logger.WarnTag("EXPORT", "stage %s: %v", name, err)
	}
}

// Text exports the current report verbatim as plain text.
func (e *Exporter) Text(state *session.State) (*Artifact, error) {
	if state == nil || state.Current == nil {
		return nil, platformerrors.New(platformerrors.KindExport, "export.text", "no report available for export")
	}
	name := e.filename(".txt")
	data := []byte(state.Current.ReportText)
	e.stage(name, data)
	e.logger.InfoTag("EXPORT", "rendered %s (%d bytes)", name, len(data))
	return &Artifact{
		Filename:    name,
		ContentType: "text/plain; charset=utf-8",
		Data:        data,
	}, nil
}

// PDF exports the current report as a formatted PDF document.
func (e *Exporter) PDF(state *session.State) (*Artifact, error) {
	if state == nil || state.Current == nil {
		return nil, platformerrors.New(platformerrors.KindExport, "export.pdf", "no report available for export")
	}
	data, err := renderPDF(state.Current, state.Patient, e.now())
	if err != nil {
		return nil, err
	}
	name := e.filename(".pdf")
	e.stage(name, data)
	e.logger.InfoTag("EXPORT", "rendered %s (%d bytes)", name, len(data))
	return &Artifact{
		Filename:    name,
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
