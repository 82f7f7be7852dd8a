// Package storage defines the key-value store the pipeline writes artifacts,
// checkpoints, the manifest, and the error log to, plus a factory over the
// available backends. Keys are slash-separated paths.
package storage

import (
	"context"
	"fmt"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage/fs"
	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage/postgres"
	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage/redis"
	"github.com/saifaddin/tadabbur-backend/internal/config"
)

// Store is a key-value store with prefix listing. Implementations map their
// native not-found signal to domain.ErrNotFound and do not treat deleting an
// absent key as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Append(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Compile-time backend assertions.
var (
	_ Store = (*fs.Store)(nil)
	_ Store = (*redis.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case config.StorageBackendFS:
		return fs.New(cfg.Dir)
	case config.StorageBackendRedis:
		return redis.New(ctx, cfg.Redis)
	case config.StorageBackendPostgres:
		return postgres.New(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}
