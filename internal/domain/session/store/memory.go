package store

import (
	"context"
	"sync"
	"time"

	platformerrors "medinsight-server-go/internal/platform/errors"

	"medinsight-server-go/internal/domain/session"
)

type memoryEntry struct {
	state     *session.State
	expiresAt time.Time
}

type memoryStore struct {
	items       map[string]memoryEntry
	mutex       sync.RWMutex
	ttl         time.Duration
	cleanupFreq time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemory builds an in-memory session store.
func NewMemory(cfg Config) Store {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	cleanup := 5 * time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		cleanup = cfg.Memory.GCInterval
	}
	s := &memoryStore{
		items:       make(map[string]memoryEntry),
		ttl:         ttl,
		cleanupFreq: cleanup,
		stop:        make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

func (s *memoryStore) gcLoop() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.CleanupExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) Save(_ context.Context, state *session.State) error {
	if state == nil || state.ID == "" {
		return platformerrors.New(platformerrors.KindStorage, "store.Save", "session id required")
	}
	s.mutex.Lock()
	s.items[state.ID] = memoryEntry{
		state:     state,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*session.State, error) {
	s.mutex.RLock()
	entry, ok := s.items[id]
	s.mutex.RUnlock()
	if !ok {
		return nil, platformerrors.New(platformerrors.KindStorage, "store.Get", "session not found: "+id)
	}
	if time.Now().After(entry.expiresAt) {
		return nil, platformerrors.New(platformerrors.KindStorage, "store.Get", "session expired: "+id)
	}
	return entry.state, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mutex.Lock()
	delete(s.items, id)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]string, error) {
	now := time.Now()
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.items))
	for id, entry := range s.items {
		if now.Before(entry.expiresAt) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memoryStore) CleanupExpired(_ context.Context) error {
	now := time.Now()
	s.mutex.Lock()
	for id, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, id)
		}
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	now := time.Now()
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := len(s.items)
	active := 0
	for _, entry := range s.items {
		if now.Before(entry.expiresAt) {
			active++
		}
	}
	return map[string]any{
		"type":        "memory",
		"total":       total,
		"active":      active,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *memoryStore) Close(_ context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
