// Package analysis exposes the report workflow over HTTP: uploads, the
// current report, exports, history and patient details.
package analysis

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"

	"medinsight-server-go/internal/domain/image"
	"medinsight-server-go/internal/domain/report"
	"medinsight-server-go/internal/domain/report/export"
	"medinsight-server-go/internal/domain/session"

	httptransport "medinsight-server-go/internal/transport/http"
)

// Service is the HTTP transport for the analysis workflow.
type Service struct {
	logger   *logging.Logger
	reports  *report.Service
	exporter *export.Exporter
}

// NewService creates the analysis transport.
func NewService(reports *report.Service, exporter *export.Exporter, logger *logging.Logger) (*Service, error) {
	if reports == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysis.new", "report service is required")
	}
	if exporter == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysis.new", "exporter is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "analysis.new", "logger is required")
	}
	return &Service{
		logger:   logger,
		reports:  reports,
		exporter: exporter,
	}, nil
}

// Register wires the analysis routes into the API group.
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/analysis", s.handleAnalyze)
	router.POST("/comparison", s.handleCompare)

	router.GET("/report", s.handleReportGet)
	router.DELETE("/report", s.handleReportDelete)
	router.GET("/report/export/text", s.handleExportText)
	router.GET("/report/export/pdf", s.handleExportPDF)

	router.GET("/history", s.handleHistory)
	router.GET("/patient", s.handlePatientGet)
	router.PUT("/patient", s.handlePatientPut)

	s.logger.InfoTag("HTTP", "analysis routes registered")
	return nil
}

func formBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.PostForm(name))
	return v
}

func (s *Service) imageInput(header *multipart.FileHeader) (image.Input, func(), error) {
	file, err := header.Open()
	if err != nil {
		return image.Input{}, nil, platformerrors.Wrap(platformerrors.KindTransport, "analysis.upload",
			"open uploaded file", err)
	}
	return image.Input{
		Reader:         file,
		DeclaredFormat: image.FormatFromFilename(header.Filename),
		Source:         header.Filename,
	}, func() { file.Close() }, nil
}

func (s *Service) handleAnalyze(c *gin.Context) {
	sessionID := httptransport.SessionID(c)

	featureKey := c.PostForm("feature")
	if featureKey == "" {
		httptransport.RespondError(c, http.StatusBadRequest, "feature is required", nil)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "image upload is required", nil)
		return
	}
	input, closeFile, err := s.imageInput(header)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeFile()

	result, err := s.reports.Analyze(c.Request.Context(), report.AnalyzeRequest{
		SessionID:         sessionID,
		FeatureKey:        featureKey,
		IncludeConfidence: formBool(c, "include_confidence"),
		Image:             input,
	})
	if err != nil {
		s.logger.WarnTag("HTTP", "analysis failed: %v", err)
		httptransport.RespondError(c, httptransport.StatusForError(err), err.Error(), nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, result, "report generated")
}

func (s *Service) handleCompare(c *gin.Context) {
	sessionID := httptransport.SessionID(c)

	first, err := c.FormFile("image1")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "image1 upload is required", nil)
		return
	}
	second, err := c.FormFile("image2")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "image2 upload is required", nil)
		return
	}

	firstInput, closeFirst, err := s.imageInput(first)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeFirst()
	secondInput, closeSecond, err := s.imageInput(second)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeSecond()

	result, err := s.reports.Compare(c.Request.Context(), report.CompareRequest{
		SessionID:         sessionID,
		IncludeConfidence: formBool(c, "include_confidence"),
		First:             firstInput,
		Second:            secondInput,
	})
	if err != nil {
		s.logger.WarnTag("HTTP", "comparison failed: %v", err)
		httptransport.RespondError(c, httptransport.StatusForError(err), err.Error(), nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, result, "comparison generated")
}

func (s *Service) currentState(c *gin.Context) *session.State {
	return s.reports.Session(c.Request.Context(), httptransport.SessionID(c))
}

func (s *Service) handleReportGet(c *gin.Context) {
	state := s.currentState(c)
	if state.Current == nil {
		httptransport.RespondError(c, http.StatusNotFound, "no report available", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, ReportPayload{
		ReportText:  state.Current.ReportText,
		ReportType:  state.Current.ReportType,
		FeatureKey:  state.Current.FeatureKey,
		GeneratedAt: state.Current.GeneratedAt,
	}, "")
}

func (s *Service) handleReportDelete(c *gin.Context) {
	sessionID := httptransport.SessionID(c)
	if err := s.reports.ClearCurrent(c.Request.Context(), sessionID); err != nil {
		httptransport.RespondError(c, httptransport.StatusForError(err), err.Error(), nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, nil, "report cleared")
}

func (s *Service) handleExportText(c *gin.Context) {
	s.export(c, s.exporter.Text)
}

func (s *Service) handleExportPDF(c *gin.Context) {
	s.export(c, s.exporter.PDF)
}

func (s *Service) export(c *gin.Context, render func(*session.State) (*export.Artifact, error)) {
	state := s.currentState(c)
	artifact, err := render(state)
	if err != nil {
		httptransport.RespondError(c, httptransport.StatusForError(err), err.Error(), nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func (s *Service) handleHistory(c *gin.Context) {
	state := s.currentState(c)
	entries := state.RecentHistory()
	items := make([]HistoryItem, len(entries))
	for i, entry := range entries {
		items[i] = HistoryItem{
			ReportType:  entry.ReportType,
			FeatureKey:  entry.FeatureKey,
			ReportText:  entry.ReportText,
			GeneratedAt: entry.GeneratedAt,
		}
	}
	httptransport.RespondSuccess(c, http.StatusOK, items, "")
}

func (s *Service) handlePatientGet(c *gin.Context) {
	state := s.currentState(c)
	httptransport.RespondSuccess(c, http.StatusOK, PatientPayload{
		ID:        state.Patient.ID,
		Age:       state.Patient.Age,
		Gender:    state.Patient.Gender,
		Physician: state.Patient.Physician,
	}, "")
}

func (s *Service) handlePatientPut(c *gin.Context) {
	sessionID := httptransport.SessionID(c)

	var payload PatientPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid patient payload", nil)
		return
	}

	err := s.reports.SetPatient(c.Request.Context(), sessionID, session.PatientInfo{
		ID:        payload.ID,
		Age:       payload.Age,
		Gender:    payload.Gender,
		Physician: payload.Physician,
	})
	if err != nil {
		httptransport.RespondError(c, httptransport.StatusForError(err), err.Error(), nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, payload, "patient details saved")
}
