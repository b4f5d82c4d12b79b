// Package redis implements storage.KVStore on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/scrypster/promptcraft/internal/logger"
	"github.com/scrypster/promptcraft/internal/storage"
)

// DefaultKeyPrefix namespaces every key written by the store.
const DefaultKeyPrefix = "promptcraft:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key. Empty means DefaultKeyPrefix.
	Prefix string
}

// KVStore implements storage.KVStore.
type KVStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore connects to Redis and verifies the connection with PING.
func NewKVStore(ctx context.Context, opts Options, log *logger.Logger) (*KVStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis: missing address")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &KVStore{
		log:    log.With("component", "redis_kv"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (s *KVStore) key(k string) string { return s.prefix + k }

// Get returns the value stored under key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: failed to get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key without expiry.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", storage.ErrInvalidInput)
	}
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, s.key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis: failed to delete %s: %w", key, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Incr atomically adds delta to the integer stored under key.
func (s *KVStore) Incr(ctx context.Context, key string, delta int64) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: key is required", storage.ErrInvalidInput)
	}
	n, err := s.rdb.IncrBy(ctx, s.key(key), delta).Result()
	if err != nil {
		if strings.Contains(err.Error(), "not an integer") {
			return 0, fmt.Errorf("%w: key %s does not hold an integer", storage.ErrInvalidInput, key)
		}
		return 0, fmt.Errorf("redis: failed to increment %s: %w", key, err)
	}
	return n, nil
}

// Close closes the client.
func (s *KVStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
