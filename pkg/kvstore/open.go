package kvstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/eventhub/pkg/logger"
	"github.com/dmitrymomot/eventhub/pkg/pg"
	"github.com/dmitrymomot/eventhub/pkg/redis"
)

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config selects and configures the storage backend.
type Config struct {
	Driver     string `env:"STORAGE_DRIVER" envDefault:"file"`
	FilePath   string `env:"STORAGE_FILE_PATH" envDefault:".eventhub/storage.json"`
	SQLitePath string `env:"STORAGE_SQLITE_PATH" envDefault:".eventhub/storage.db"`

	Redis    redis.Config
	Postgres pg.Config
}

// Backend is an opened Storage together with its lifecycle hooks.
type Backend struct {
	Storage

	driver string
	close  func() error
	ping   func(context.Context) error
}

// Driver returns the name of the backend driver.
func (b *Backend) Driver() string {
	return b.driver
}

// Healthcheck reports whether the backend is reachable.
// Local backends are always healthy.
func (b *Backend) Healthcheck(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases backend resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the Storage selected by cfg.Driver. An empty driver selects
// the file backend.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverFile
	}
	log = log.With(logger.Component("kvstore"), logger.Driver(cfg.Driver))

	switch cfg.Driver {
	case DriverMemory:
		log.WarnContext(ctx, "using in-memory storage, state is lost on exit")
		return &Backend{Storage: NewMemory(), driver: cfg.Driver}, nil

	case DriverFile:
		store, err := OpenFile(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "storage opened", slog.String("path", cfg.FilePath))
		return &Backend{Storage: store, driver: cfg.Driver}, nil

	case DriverSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); cfg.SQLitePath != ":memory:" && dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, errors.Join(ErrStorageFailed, err)
			}
		}
		store, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.InfoContext(ctx, "storage opened", slog.String("path", cfg.SQLitePath))
		return &Backend{Storage: store, driver: cfg.Driver, close: store.Close, ping: store.Ping}, nil

	case DriverRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, errors.Join(ErrStorageFailed, err)
		}
		store := redis.NewStorage(client, redis.WithKeyPrefix(cfg.Redis.KeyPrefix))
		log.InfoContext(ctx, "storage opened")
		return &Backend{
			Storage: store,
			driver:  cfg.Driver,
			close:   store.Close,
			ping:    store.Ping,
		}, nil

	case DriverPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, errors.Join(ErrStorageFailed, err)
		}
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			pool.Close()
			return nil, errors.Join(ErrStorageFailed, err)
		}
		store := pg.NewStorage(pool)
		log.InfoContext(ctx, "storage opened")
		return &Backend{
			Storage: store,
			driver:  cfg.Driver,
			close:   func() error { pool.Close(); return nil },
			ping:    store.Ping,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
