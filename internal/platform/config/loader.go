package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".config.yaml"

// Loader reads configuration from a yaml file layered over DefaultConfig,
// with environment overrides for secrets.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      defaultConfigFile,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load merges the config file over defaults, applies env overrides, and
// validates the outcome. A missing file is not an error; defaults apply.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	cfg := DefaultConfig()
	path := l.path
	if env := os.Getenv("MEDINSIGHT_CONFIG"); env != "" {
		path = env
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	l.applyEnvOverrides(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

// applyEnvOverrides lets deployment environments inject the inference API key
// without writing it into the config file.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("VISION_API_KEY"); key != "" {
		selected := cfg.Selected.Vision
		if provider, ok := cfg.Vision[selected]; ok {
			provider.APIKey = key
			cfg.Vision[selected] = provider
		}
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Session.Store.Redis.Addr = addr
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Selected.Vision == "" {
		return fmt.Errorf("selected vision provider is required")
	}
	if _, ok := cfg.Vision[cfg.Selected.Vision]; !ok {
		return fmt.Errorf("selected vision provider %q not configured", cfg.Selected.Vision)
	}
	for name, provider := range cfg.Vision {
		if provider.ModelName == "" {
			return fmt.Errorf("vision provider %q missing model name", name)
		}
		if provider.Security.MaxFileSize <= 0 {
			return fmt.Errorf("vision provider %q has non-positive max file size", name)
		}
	}
	switch cfg.Session.Store.Type {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("unsupported session store type: %s", cfg.Session.Store.Type)
	}
	return nil
}
