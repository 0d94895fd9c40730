package store

import (
	platformerrors "medinsight-server-go/internal/platform/errors"
)

// Driver identifiers supported by the session domain.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New creates a session store based on the provided configuration.
func New(cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverMemory:
		return NewMemory(cfg), nil
	case DriverRedis:
		return NewRedis(cfg)
	default:
		return nil, platformerrors.New(platformerrors.KindStorage, "store.New", "unsupported session store driver: "+driver)
	}
}
