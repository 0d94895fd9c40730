package store

import (
	"context"
	"strings"
	"time"

	platformerrors "medinsight-server-go/internal/platform/errors"

	"medinsight-server-go/internal/domain/session"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis constructs a redis-backed session store. Session payloads are
// encoded with sonic; expiration rides on the key TTL.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, platformerrors.New(platformerrors.KindStorage, "store.NewRedis", "redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, platformerrors.New(platformerrors.KindStorage, "store.NewRedis", "redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "store.NewRedis", "redis ping failed", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "medinsight:session:"
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
		prefix: prefix,
	}, nil
}

func (s *redisStore) key(id string) string {
	return s.prefix + id
}

func (s *redisStore) Save(ctx context.Context, state *session.State) error {
	if state == nil || state.ID == "" {
		return platformerrors.New(platformerrors.KindStorage, "store.Save", "session id required")
	}
	data, err := sonic.Marshal(state)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "store.Save", "encode session", err)
	}
	return s.client.Set(ctx, s.key(state.ID), data, s.ttl).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (*session.State, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, platformerrors.New(platformerrors.KindStorage, "store.Get", "session not found: "+id)
		}
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "store.Get", "redis get", err)
	}
	var state session.State
	if err := sonic.Unmarshal(raw, &state); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "store.Get", "decode session", err)
	}
	return &state, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *redisStore) List(ctx context.Context) ([]string, error) {
	var cursor uint64
	ids := make([]string, 0)
	pattern := s.prefix + "*"
	for {
		res, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range res {
			ids = append(ids, strings.TrimPrefix(key, s.prefix))
		}
		if nextCursor == 0 {
			break
		}
		cursor = nextCursor
	}
	return ids, nil
}

func (s *redisStore) CleanupExpired(context.Context) error {
	// Redis handles expiration via TTL.
	return nil
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	size, err := s.client.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":        "redis",
		"total":       size,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
