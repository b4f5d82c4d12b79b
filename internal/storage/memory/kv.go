// Package memory provides an in-process storage.KVStore.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/scrypster/promptcraft/internal/storage"
)

// KVStore keeps values in a map guarded by a mutex. Values are copied on the
// way in and out so callers cannot alias stored bytes.
type KVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.KVStore = (*KVStore)(nil)

// NewKVStore returns an empty store.
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *KVStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *KVStore) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// Incr adds delta to the decimal integer stored under key.
func (s *KVStore) Incr(_ context.Context, key string, delta int64) (int64, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: key is required", storage.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if raw, ok := s.data[key]; ok {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: key %s does not hold an integer", storage.ErrInvalidInput, key)
		}
		current = n
	}
	next := current + delta
	s.data[key] = []byte(strconv.FormatInt(next, 10))
	return next, nil
}
