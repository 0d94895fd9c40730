// Package store persists session state behind a driver-selectable interface.
package store

import (
	"context"
	"time"

	"medinsight-server-go/internal/domain/session"
)

// Store defines the behaviour required by the session manager.
type Store interface {
	Save(ctx context.Context, state *session.State) error
	Get(ctx context.Context, id string) (*session.State, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	CleanupExpired(ctx context.Context) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Redis  *RedisConfig
	Memory *MemoryConfig
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
