package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	platformtesting "medinsight-server-go/internal/platform/testing"

	"medinsight-server-go/internal/domain/session/store"

	httptransport "medinsight-server-go/internal/transport/http"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := platformtesting.SetupTestConfig(t)
	logger := platformtesting.SetupTestLogger(t)

	sessions, err := store.New(store.Config{Driver: store.DriverMemory})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close(context.Background()) })

	router, err := httptransport.Build(httptransport.Options{
		Config:     cfg,
		Logger:     logger,
		StaticRoot: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	svc, err := NewService(cfg, sessions, logger)
	if err != nil {
		t.Fatalf("new webapi service: %v", err)
	}
	if err := svc.Register(context.Background(), router.API); err != nil {
		t.Fatalf("register routes: %v", err)
	}
	return router.Engine
}

func TestFeaturesEndpoint(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/features", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, key := range []string{"classification", "xray", "ct", "mri", "ultrasound", "comparison"} {
		if !strings.Contains(body, `"`+key+`"`) {
			t.Fatalf("features missing %q: %s", key, body)
		}
	}
	// Prompt templates stay server-side.
	if strings.Contains(body, "Expert radiologist") {
		t.Fatalf("feature listing must not leak templates")
	}
}

func TestSystemStatusEndpoint(t *testing.T) {
	engine := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, field := range []string{"uptime_seconds", "go_version", "memory_percent", "sessions", "vision_model"} {
		if !strings.Contains(body, field) {
			t.Fatalf("status missing %q: %s", field, body)
		}
	}
}
