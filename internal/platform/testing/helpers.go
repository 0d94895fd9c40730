package testing

import (
	"testing"

	"medinsight-server-go/internal/platform/config"
	"medinsight-server-go/internal/platform/logging"
)

// SetupTestConfig returns a config suitable for unit tests: loopback server,
// memory session store, a single fake-keyed vision provider.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Log.Level = "debug"
	cfg.Log.Dir = t.TempDir()
	cfg.Export.TempDir = t.TempDir()
	cfg.Selected.Vision = "TestVision"
	cfg.Vision = map[string]config.VisionConfig{
		"TestVision": {
			Type:      "openai",
			ModelName: "test-model",
			APIKey:    "test-key",
			Security: config.SecurityConfig{
				MaxFileSize:    5 * 1024 * 1024,
				MaxPixels:      16777216,
				MaxWidth:       4096,
				MaxHeight:      4096,
				AllowedFormats: []string{"jpeg", "jpg", "png"},
			},
		},
	}
	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level: "debug",
		Dir:   "",
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(logger.Close)
	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}
