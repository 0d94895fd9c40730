package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Config captures observability toggles.
type Config struct {
	Enabled bool
}

// ShutdownFunc tears down any exporters registered during Setup.
type ShutdownFunc func(context.Context) error

var (
	mu    sync.RWMutex
	sink  *slog.Logger
	state Config
)

func current() (*slog.Logger, Config) {
	mu.RLock()
	defer mu.RUnlock()
	return sink, state
}

// Setup installs the logger-backed instrumentation sink. Spans and metrics
// degrade to debug-level log records; an exporter can replace this later
// without touching call sites.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	mu.Lock()
	sink = logger
	state = cfg
	mu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] instrumentation enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] disabled")
		}
	}
	return func(context.Context) error { return nil }, nil
}
