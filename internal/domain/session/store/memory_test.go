package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"medinsight-server-go/internal/domain/session"
)

func TestMemoryStoreBasicLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{
		TTL:    time.Second,
		Memory: &MemoryConfig{GCInterval: 10 * time.Millisecond},
	})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	state := session.NewState("sess-basic")
	state.SetPatient(session.PatientInfo{ID: "P-1", Physician: "Dr. Lin"})
	state.SetResult(&session.ReportResult{
		ReportText:  "FINDINGS: unremarkable.",
		ReportType:  "X-ray Analysis",
		FeatureKey:  "xray",
		GeneratedAt: time.Now(),
	})

	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	stored, err := store.Get(ctx, state.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if stored.Patient.ID != "P-1" || stored.Current == nil || stored.Current.FeatureKey != "xray" {
		t.Fatalf("unexpected session state: %+v", stored)
	}

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(ids) != 1 || ids[0] != state.ID {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if err := store.Delete(ctx, state.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Get(ctx, state.ID); err == nil {
		t.Fatalf("expected error after delete")
	}
}

func TestMemoryStoreExpiration(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{
		TTL:    20 * time.Millisecond,
		Memory: &MemoryConfig{GCInterval: 5 * time.Millisecond},
	})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	if err := store.Save(ctx, session.NewState("sess-expires")); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	time.Sleep(60 * time.Millisecond)

	_, err := store.Get(ctx, "sess-expires")
	if err == nil {
		t.Fatalf("expected expired session error")
	}
	if !strings.Contains(err.Error(), "sess-expires") {
		t.Fatalf("error should name the session: %v", err)
	}
}

func TestMemoryStoreRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Second})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	if err := store.Save(ctx, &session.State{}); err == nil {
		t.Fatalf("expected error for empty session id")
	}
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(Config{TTL: time.Second})
	t.Cleanup(func() {
		_ = store.Close(ctx)
	})

	_ = store.Save(ctx, session.NewState("a"))
	_ = store.Save(ctx, session.NewState("b"))

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats["type"] != "memory" || stats["total"] != 2 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}
