package bootstrap

import (
	"context"
	"os"
	"testing"
)

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"session:init-store",
		"vision:init-provider",
		"report:init-service",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func TestInitGraphDependenciesDeclared(t *testing.T) {
	seen := make(map[string]struct{})
	for _, step := range InitGraph() {
		for _, dep := range step.DependsOn {
			if _, ok := seen[dep]; !ok {
				t.Fatalf("step %s depends on %s before it is declared", step.ID, dep)
			}
		}
		seen[step.ID] = struct{}{}
	}
}

func TestExecuteInitSteps(t *testing.T) {
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldWD); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
	t.Setenv("VISION_API_KEY", "smoke-test-key")

	state := &appState{}
	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.sessions == nil {
		t.Fatal("session store is nil after init")
	}
	if state.visionProvider == nil {
		t.Fatal("vision provider is nil after init")
	}
	if state.reports == nil || state.exporter == nil {
		t.Fatal("report service or exporter not initialised")
	}
	defer state.logger.Close()
	defer state.sessions.Close(context.Background())
	if state.observabilityShutdown != nil {
		defer state.observabilityShutdown(context.Background())
	}
}

func TestExecuteInitStepsRejectsUnmetDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "late",
			DependsOn: []string{"never-declared"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	if err := executeInitSteps(context.Background(), steps, &appState{}); err == nil {
		t.Fatal("expected unmet dependency error")
	}
}
