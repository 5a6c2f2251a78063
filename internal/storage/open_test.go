package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"task-tracker/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{
			Driver:         driver,
			Key:            "tasks",
			Dir:            t.TempDir(),
			OpTimeout:      time.Second,
			CircuitBreaker: true,
			MaxFailures:    3,
			BreakerTimeout: time.Second,
		},
		Database: config.DatabaseConfig{
			Path:         "nested/tasks.db",
			MaxOpenConns: 2,
			MaxIdleConns: 1,
		},
	}
}

func TestOpen_Memory(t *testing.T) {
	store, err := Open(context.Background(), testConfig(t, config.DriverMemory))
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.inner.(*MemoryStore)
	assert.True(t, ok, "expected memory backend, got %T", store.inner)
}

func TestOpen_File(t *testing.T) {
	cfg := testConfig(t, config.DriverFile)
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), []byte("[]")))
	_, err = os.Stat(filepath.Join(cfg.Storage.Dir, "tasks.json"))
	assert.NoError(t, err)
}

func TestOpen_SQLiteCreatesDatabaseUnderDir(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, Initialize(context.Background(), store))
	_, err = os.Stat(filepath.Join(cfg.Storage.Dir, "nested", "tasks.db"))
	assert.NoError(t, err)

	_, guarded := store.inner.(*GuardedStore)
	assert.False(t, guarded, "local sqlite should not be wrapped in a breaker")
}

func TestOpen_RedisIsGuarded(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")

	cfg := testConfig(t, config.DriverRedis)
	cfg.Redis = config.RedisConfig{
		Host:        host,
		Port:        port,
		PoolSize:    2,
		DialTimeout: time.Second,
		ReadTimeout: time.Second,
	}

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer store.Close()

	_, guarded := store.inner.(*GuardedStore)
	assert.True(t, guarded, "redis backend should sit behind the breaker")
	assert.NoError(t, store.Health(context.Background()))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := strings.Cut(mr.Addr(), ":")
	mr.Close()

	cfg := testConfig(t, config.DriverRedis)
	cfg.Redis = config.RedisConfig{Host: host, Port: port, DialTimeout: 200 * time.Millisecond}

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, "dynamo"))
	assert.Error(t, err)
}
