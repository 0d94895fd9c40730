package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Level: "debug", Dir: dir, Filename: "test.log"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	logger.InfoTag("HTTP", "request handled in %dms", 12)
	logger.Debug("raw debug line")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "[HTTP] request handled in 12ms") {
		t.Errorf("log file missing tagged line: %q", content)
	}
	if strings.Contains(content, "\x1b[") {
		t.Error("file output should not contain color escape sequences")
	}
}

func TestNewWithoutDir(t *testing.T) {
	logger, err := New(Config{Level: "info"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer logger.Close()

	if logger.Slog() == nil {
		t.Fatal("expected slog accessor to be non-nil")
	}
}
