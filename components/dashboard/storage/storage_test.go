package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-dashboard-prefs/components/dashboard"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// exerciseBackend runs the shared load/save/delete contract.
func exerciseBackend(t *testing.T, backend dashboard.Backend) {
	t.Helper()
	ctx := context.Background()
	key := dashboard.StorageKey("app", "user:1")

	_, ok, err := backend.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Save(ctx, key, []byte(`{"userId":"user:1"}`)))
	require.NoError(t, backend.Save(ctx, key, []byte(`{"userId":"user:1","v":2}`)))
	data, ok, err := backend.Load(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"userId":"user:1","v":2}`, string(data))

	require.NoError(t, backend.Delete(ctx, key))
	_, ok, err = backend.Load(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, backend.Delete(ctx, key))
}

func TestFileBackend(t *testing.T) {
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "settings"))
	require.NoError(t, err)
	exerciseBackend(t, backend)
}

func TestFileBackendEscapesKeys(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backend.Dir, "app%3Auser-settings%3Au%2F1.json"), backend.path("app:user-settings:u/1"))
}

func TestSQLiteBackend(t *testing.T) {
	backend, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "settings.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	exerciseBackend(t, backend)

	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "b", []byte("{}")))
	require.NoError(t, backend.Save(ctx, "a", []byte("{}")))
	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestRedisBackend(t *testing.T) {
	client := newFakeRedis()
	exerciseBackend(t, NewRedisBackend(client, 0))

	backend := NewRedisBackend(client, time.Hour)
	require.NoError(t, backend.Save(context.Background(), "k", []byte("{}")))
	assert.Equal(t, time.Hour, client.ttls["k"])
}

func TestRedisBackendWrapsErrors(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("connection refused")
	backend := NewRedisBackend(client, 0)
	_, _, err := backend.Load(context.Background(), "k")
	assert.ErrorIs(t, err, client.err)
	assert.ErrorIs(t, backend.Save(context.Background(), "k", nil), client.err)
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	backend, closer, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &dashboard.MemoryBackend{}, backend)
	assert.NoError(t, closer.Close())

	backend, closer, err = Open(ctx, Options{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "db.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteBackend{}, backend)
	assert.NoError(t, closer.Close())

	_, _, err = Open(ctx, Options{Driver: "file"})
	assert.Error(t, err)
	_, _, err = Open(ctx, Options{Driver: "etcd"})
	assert.Error(t, err)
}

func TestStoreOverFileBackendSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	store := dashboard.NewStore(dashboard.StoreOptions{AppID: "app", Backend: backend})
	require.NoError(t, store.Initialize(ctx, "user-1"))
	require.NoError(t, store.SetWidgetOrder(ctx, "user-1", dashboard.ContextAdmin, []string{"b", "a"}))

	reopened, err := NewFileBackend(dir)
	require.NoError(t, err)
	again := dashboard.NewStore(dashboard.StoreOptions{AppID: "app", Backend: reopened})
	require.NoError(t, again.Initialize(ctx, "user-1"))
	assert.Equal(t, []string{"b", "a"}, again.WidgetOrder("user-1", dashboard.ContextAdmin))
}
