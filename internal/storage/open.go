package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"task-tracker/internal/config"
	"task-tracker/internal/database"
)

// Open builds the configured backend. Remote backends are wrapped in a
// circuit breaker when enabled, and every backend is instrumented.
func Open(ctx context.Context, cfg *config.Config) (*InstrumentedStore, error) {
	var (
		backend Store
		remote  bool
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		backend = NewMemoryStore()
	case config.DriverFile:
		fs, err := NewFileStore(cfg.Storage.Dir, cfg.Storage.Key)
		if err != nil {
			return nil, err
		}
		backend = fs
	case config.DriverSQLite, config.DriverPostgres:
		pc := poolConfig(cfg)
		if pc.Driver == database.DriverSQLite && pc.DSN != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(pc.DSN), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		pool, err := database.NewDatabasePool(pc)
		if err != nil {
			return nil, err
		}
		gs, err := NewGormStore(pool, cfg.Storage.Key)
		if err != nil {
			pool.Close()
			return nil, err
		}
		backend = gs
		remote = cfg.Storage.Driver == config.DriverPostgres
	case config.DriverRedis:
		rs := NewRedisStore(&RedisConfig{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, cfg.Storage.Key)
		if err := rs.Health(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("redis unreachable at %s: %w", cfg.GetRedisAddr(), err)
		}
		backend = rs
		remote = true
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if remote && cfg.Storage.CircuitBreaker {
		backend = NewGuardedStore(backend, &BreakerConfig{
			MaxFailures:      cfg.Storage.MaxFailures,
			Timeout:          cfg.Storage.BreakerTimeout,
			HalfOpenMaxCalls: 1,
		})
	}

	return NewInstrumentedStore(backend), nil
}

func poolConfig(cfg *config.Config) *database.PoolConfig {
	pc := database.DefaultPoolConfig()
	pc.MaxOpenConns = cfg.Database.MaxOpenConns
	pc.MaxIdleConns = cfg.Database.MaxIdleConns
	pc.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	pc.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime

	if cfg.Storage.Driver == config.DriverPostgres {
		pc.Driver = database.DriverPostgres
		pc.DSN = cfg.GetDatabaseDSN()
		return pc
	}

	pc.Driver = database.DriverSQLite
	pc.DSN = cfg.Database.Path
	if pc.DSN != ":memory:" && !filepath.IsAbs(pc.DSN) && cfg.Storage.Dir != "" {
		pc.DSN = filepath.Join(cfg.Storage.Dir, pc.DSN)
	}
	return pc
}
