package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 9090
log:
  log_level: "debug"
  log_dir: "/tmp/logs"
  log_file: "test.log"
selected_module:
  vision: "OllamaVision"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Selected.Vision != "OllamaVision" {
		t.Errorf("expected selected provider OllamaVision, got %s", cfg.Selected.Vision)
	}
	// Untouched sections keep their defaults.
	if cfg.Session.Store.Type != "memory" {
		t.Errorf("expected default store type memory, got %s", cfg.Session.Store.Type)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("load with missing file: %v", err)
	}
	if result.Path != "" {
		t.Errorf("expected empty origin path for defaults, got %q", result.Path)
	}
	if result.Config.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", result.Config.Server.Port)
	}
}

func TestLoader_EnvAPIKeyOverride(t *testing.T) {
	t.Setenv("VISION_API_KEY", "secret-from-env")

	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := result.Config
	if cfg.Vision[cfg.Selected.Vision].APIKey != "secret-from-env" {
		t.Error("expected VISION_API_KEY to override configured key")
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	valid := DefaultConfig()

	badPort := DefaultConfig()
	badPort.Server.Port = 70000

	badSelection := DefaultConfig()
	badSelection.Selected.Vision = "NoSuchProvider"

	badStore := DefaultConfig()
	badStore.Session.Store.Type = "cassandra"

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "valid config", config: valid, wantErr: false},
		{name: "invalid server port", config: badPort, wantErr: true},
		{name: "unknown provider selected", config: badSelection, wantErr: true},
		{name: "unsupported store type", config: badStore, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := loader.validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
