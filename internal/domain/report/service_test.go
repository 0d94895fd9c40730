package report

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"testing"

	platformerrors "medinsight-server-go/internal/platform/errors"
	platformtesting "medinsight-server-go/internal/platform/testing"

	"medinsight-server-go/internal/domain/eventbus"
	"medinsight-server-go/internal/domain/image"
	"medinsight-server-go/internal/domain/prompt"
	"medinsight-server-go/internal/domain/session"
	"medinsight-server-go/internal/domain/session/store"
)

type fakeGenerator struct {
	lastPrompt string
	lastImages int
	reply      string
	err        error
}

func (f *fakeGenerator) Generate(_ context.Context, promptText string, images []*image.Bitmap) (string, error) {
	f.lastPrompt = promptText
	f.lastImages = len(images)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, gen Generator) (*Service, store.Store) {
	t.Helper()
	cfg := platformtesting.SetupTestConfig(t)
	logger := platformtesting.SetupTestLogger(t)

	selected := cfg.Vision[cfg.Selected.Vision]
	pipeline, err := image.NewPipeline(image.Options{
		Security: &selected.Security,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	sessions, err := store.New(store.Config{Driver: store.DriverMemory})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })

	return NewService(pipeline, gen, sessions, eventbus.New(), logger), sessions
}

func TestAnalyzeUpdatesSession(t *testing.T) {
	gen := &fakeGenerator{reply: "FINDINGS: clear lung fields.\nIMPRESSION: normal study."}
	svc, sessions := newTestService(t, gen)
	ctx := context.Background()

	res, err := svc.Analyze(ctx, AnalyzeRequest{
		SessionID:         "sess-1",
		FeatureKey:        prompt.KeyXRay,
		IncludeConfidence: true,
		Image: image.Input{
			Reader:         bytes.NewReader(encodePNG(t, 32, 32)),
			DeclaredFormat: "png",
			Source:         "upload",
		},
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if res.ReportType != "X-ray Analysis" {
		t.Fatalf("report type = %q", res.ReportType)
	}
	if gen.lastImages != 1 {
		t.Fatalf("generator received %d images, want 1", gen.lastImages)
	}
	if !bytes.Contains([]byte(gen.lastPrompt), []byte("confidence score (0-100%)")) {
		t.Fatalf("confidence suffix missing from prompt: %q", gen.lastPrompt)
	}

	state, err := sessions.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if state.Current == nil || state.Current.ReportText != gen.reply {
		t.Fatalf("current report not recorded: %+v", state.Current)
	}
	if state.Current.Image == nil || state.Current.Image.Width != 32 {
		t.Fatalf("image not attached to result: %+v", state.Current.Image)
	}
	if len(state.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(state.History))
	}
}

func TestAnalyzePublishesCompletionEvent(t *testing.T) {
	gen := &fakeGenerator{reply: "IMPRESSION: stable."}
	svc, _ := newTestService(t, gen)

	var got eventbus.ReportCompletedEvent
	if err := svc.bus.Subscribe(eventbus.TopicReportCompleted, func(ev eventbus.ReportCompletedEvent) {
		got = ev
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		SessionID:  "sess-ev",
		FeatureKey: prompt.KeyCT,
		Image:      image.Input{Reader: bytes.NewReader(encodePNG(t, 16, 16)), DeclaredFormat: "png"},
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if got.SessionID != "sess-ev" || got.FeatureKey != prompt.KeyCT {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestAnalyzeRejectsUnknownFeature(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{reply: "x"})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		SessionID:  "sess-2",
		FeatureKey: "nonsense",
		Image:      image.Input{Reader: bytes.NewReader(encodePNG(t, 8, 8)), DeclaredFormat: "png"},
	})
	if err == nil {
		t.Fatalf("expected error for unknown feature")
	}
	if !platformerrors.IsKind(err, platformerrors.KindDomain) {
		t.Fatalf("kind = %v, want domain", platformerrors.KindOf(err))
	}
}

func TestAnalyzeRejectsComparisonFeature(t *testing.T) {
	svc, _ := newTestService(t, &fakeGenerator{reply: "x"})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		SessionID:  "sess-3",
		FeatureKey: prompt.KeyComparison,
		Image:      image.Input{Reader: bytes.NewReader(encodePNG(t, 8, 8)), DeclaredFormat: "png"},
	})
	if err == nil {
		t.Fatalf("comparison must not run through Analyze")
	}
}

func TestAnalyzeRejectsEmptyModelReply(t *testing.T) {
	svc, sessions := newTestService(t, &fakeGenerator{reply: "   \n"})

	_, err := svc.Analyze(context.Background(), AnalyzeRequest{
		SessionID:  "sess-4",
		FeatureKey: prompt.KeyMRI,
		Image:      image.Input{Reader: bytes.NewReader(encodePNG(t, 8, 8)), DeclaredFormat: "png"},
	})
	if err == nil {
		t.Fatalf("expected error for blank model reply")
	}
	if !platformerrors.IsKind(err, platformerrors.KindInference) {
		t.Fatalf("kind = %v, want inference", platformerrors.KindOf(err))
	}
	if _, err := sessions.Get(context.Background(), "sess-4"); err == nil {
		t.Fatalf("failed analysis must not persist session state")
	}
}

func TestCompareDoesNotTouchHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "1. Similarities: both frontal views."}
	svc, sessions := newTestService(t, gen)
	ctx := context.Background()

	res, err := svc.Compare(ctx, CompareRequest{
		SessionID: "sess-cmp",
		First:     image.Input{Reader: bytes.NewReader(encodePNG(t, 16, 16)), DeclaredFormat: "png"},
		Second:    image.Input{Reader: bytes.NewReader(encodePNG(t, 24, 24)), DeclaredFormat: "png"},
	})
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if res.FeatureKey != prompt.KeyComparison {
		t.Fatalf("feature = %q", res.FeatureKey)
	}
	if gen.lastImages != 2 {
		t.Fatalf("generator received %d images, want 2", gen.lastImages)
	}
	// Comparison results are ephemeral.
	if _, err := sessions.Get(ctx, "sess-cmp"); err == nil {
		t.Fatalf("comparison must not create session state")
	}
}

func TestClearCurrentKeepsHistory(t *testing.T) {
	gen := &fakeGenerator{reply: "IMPRESSION: normal."}
	svc, sessions := newTestService(t, gen)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, AnalyzeRequest{
		SessionID:  "sess-clear",
		FeatureKey: prompt.KeyUltrasound,
		Image:      image.Input{Reader: bytes.NewReader(encodePNG(t, 8, 8)), DeclaredFormat: "png"},
	})
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}

	if err := svc.ClearCurrent(ctx, "sess-clear"); err != nil {
		t.Fatalf("ClearCurrent error: %v", err)
	}
	state, err := sessions.Get(ctx, "sess-clear")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if state.Current != nil {
		t.Fatalf("current report should be cleared")
	}
	if len(state.History) != 1 {
		t.Fatalf("history should survive clear, got %d entries", len(state.History))
	}
}

func TestSetPatientCreatesSession(t *testing.T) {
	svc, sessions := newTestService(t, &fakeGenerator{reply: "x"})
	ctx := context.Background()

	err := svc.SetPatient(ctx, "sess-patient", session.PatientInfo{ID: "P-9", Age: "61"})
	if err != nil {
		t.Fatalf("SetPatient error: %v", err)
	}
	state, err := sessions.Get(ctx, "sess-patient")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if state.Patient.ID != "P-9" {
		t.Fatalf("patient not stored: %+v", state.Patient)
	}
}
