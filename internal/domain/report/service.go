// Package report orchestrates the analysis workflow: decode and validate the
// upload, build the feature prompt, call the vision backend, and record the
// outcome in the session.
package report

import (
	"context"
	"strings"
	"time"

	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"
	"medinsight-server-go/internal/platform/observability"

	"medinsight-server-go/internal/domain/eventbus"
	"medinsight-server-go/internal/domain/image"
	"medinsight-server-go/internal/domain/prompt"
	"medinsight-server-go/internal/domain/session"
	"medinsight-server-go/internal/domain/session/store"

	evbus "github.com/asaskevich/EventBus"
)

// Service runs analyses against a generator and keeps session state current.
type Service struct {
	pipeline  *image.Pipeline
	generator Generator
	sessions  store.Store
	bus       evbus.Bus
	logger    *logging.Logger
}

// NewService wires the analysis workflow together.
func NewService(
	pipeline *image.Pipeline,
	generator Generator,
	sessions store.Store,
	bus evbus.Bus,
	logger *logging.Logger,
) *Service {
	return &Service{
		pipeline:  pipeline,
		generator: generator,
		sessions:  sessions,
		bus:       bus,
		logger:    logger,
	}
}

// Session loads existing state for the id, or starts fresh state when none is
// stored yet.
func (s *Service) Session(ctx context.Context, id string) *session.State {
	if state, err := s.sessions.Get(ctx, id); err == nil {
		return state
	}
	return session.NewState(id)
}

// SaveSession persists session state.
func (s *Service) SaveSession(ctx context.Context, state *session.State) error {
	return s.sessions.Save(ctx, state)
}

// Analyze runs a single-image feature end to end and updates the session's
// current report and history.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Result, error) {
	ctx, end := observability.StartSpan(ctx, "report", "analyze")
	var err error
	defer func() { end(err) }()

	feature, err := prompt.Get(req.FeatureKey)
	if err != nil {
		return nil, err
	}
	if feature.ImageCount != 1 {
		err = platformerrors.New(platformerrors.KindDomain, "report.analyze",
			"feature "+feature.Key+" expects the comparison endpoint")
		return nil, err
	}

	bitmap, err := s.pipeline.Process(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	text, err := prompt.Build(req.FeatureKey, req.IncludeConfidence)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	reportText, err := s.generator.Generate(ctx, text, []*image.Bitmap{bitmap})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reportText) == "" {
		err = platformerrors.New(platformerrors.KindInference, "report.analyze", "empty response from model")
		return nil, err
	}
	s.logger.InfoTag("VISION", "generated %s report in %s (%d chars)",
		req.FeatureKey, time.Since(started).Round(time.Millisecond), len(reportText))

	state := s.Session(ctx, req.SessionID)
	generatedAt := time.Now()
	state.SetResult(&session.ReportResult{
		ReportText:  reportText,
		ReportType:  feature.Title,
		FeatureKey:  feature.Key,
		Image:       bitmap,
		GeneratedAt: generatedAt,
	})
	if err = s.sessions.Save(ctx, state); err != nil {
		return nil, err
	}

	s.bus.Publish(eventbus.TopicReportCompleted, eventbus.ReportCompletedEvent{
		SessionID:   req.SessionID,
		FeatureKey:  feature.Key,
		ReportType:  feature.Title,
		GeneratedAt: generatedAt,
	})
	observability.RecordMetric(ctx, "report_generated_total", 1, map[string]string{"feature": feature.Key})

	return &Result{
		ReportText:  reportText,
		ReportType:  feature.Title,
		FeatureKey:  feature.Key,
		Width:       bitmap.Width,
		Height:      bitmap.Height,
		GeneratedAt: generatedAt,
	}, nil
}

// Compare runs the two-image comparison feature. The result is returned to
// the caller only: it does not replace the current report and is not added to
// history.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*Result, error) {
	ctx, end := observability.StartSpan(ctx, "report", "compare")
	var err error
	defer func() { end(err) }()

	first, err := s.pipeline.Process(ctx, req.First)
	if err != nil {
		return nil, err
	}
	second, err := s.pipeline.Process(ctx, req.Second)
	if err != nil {
		return nil, err
	}

	text, err := prompt.Build(prompt.KeyComparison, req.IncludeConfidence)
	if err != nil {
		return nil, err
	}

	reportText, err := s.generator.Generate(ctx, text, []*image.Bitmap{first, second})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reportText) == "" {
		err = platformerrors.New(platformerrors.KindInference, "report.compare", "empty response from model")
		return nil, err
	}

	feature, _ := prompt.Get(prompt.KeyComparison)
	observability.RecordMetric(ctx, "report_generated_total", 1, map[string]string{"feature": feature.Key})

	return &Result{
		ReportText:  reportText,
		ReportType:  feature.Title,
		FeatureKey:  feature.Key,
		GeneratedAt: time.Now(),
	}, nil
}

// ClearCurrent drops the session's current report, keeping history.
func (s *Service) ClearCurrent(ctx context.Context, sessionID string) error {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	state.ClearResult()
	if err := s.sessions.Save(ctx, state); err != nil {
		return err
	}
	s.bus.Publish(eventbus.TopicSessionCleared, eventbus.SessionClearedEvent{SessionID: sessionID})
	return nil
}

// SetPatient updates the patient details attached to the session.
func (s *Service) SetPatient(ctx context.Context, sessionID string, p session.PatientInfo) error {
	state := s.Session(ctx, sessionID)
	state.SetPatient(p)
	return s.sessions.Save(ctx, state)
}
