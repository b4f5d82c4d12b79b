package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrypster/promptcraft/internal/storage"
)

// newTestKV connects to PROMPTCRAFT_TEST_REDIS_ADDR under a per-test prefix.
// Tests are skipped when the variable is not set.
func newTestKV(t *testing.T) *KVStore {
	t.Helper()
	addr := os.Getenv("PROMPTCRAFT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PROMPTCRAFT_TEST_REDIS_ADDR not set; skipping Redis integration tests")
	}
	prefix := fmt.Sprintf("promptcraft-test:%d:", time.Now().UnixNano())
	kv, err := NewKVStore(context.Background(), Options{Addr: addr, Prefix: prefix}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := kv.rdb.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = kv.rdb.Del(ctx, keys...).Err()
		}
		_ = kv.Close()
	})
	return kv
}

func TestNewKVStore_RequiresAddr(t *testing.T) {
	_, err := NewKVStore(context.Background(), Options{}, nil)
	assert.Error(t, err)
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	_, err := kv.Get(ctx, "draft:none")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "draft:a", []byte("payload")))
	v, err := kv.Get(ctx, "draft:a")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(v))

	require.NoError(t, kv.Delete(ctx, "draft:a"))
	assert.ErrorIs(t, kv.Delete(ctx, "draft:a"), storage.ErrNotFound)
}

func TestKVStore_Incr(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	n, err := kv.Incr(ctx, "usage:compositions", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = kv.Incr(ctx, "usage:compositions", 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	require.NoError(t, kv.Set(ctx, "text", []byte("abc")))
	_, err = kv.Incr(ctx, "text", 1)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
