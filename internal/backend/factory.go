// Package backend opens the configured storage.Store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expenseminimizer/internal/storage"
)

// Factory opens stores from configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Open returns the store described by cfg. The caller owns the store and
// must Close it.
func (f *Factory) Open(ctx context.Context, cfg Config) (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch cfg.Type {
	case Memory:
		store = storage.NewMemoryStore()
	case File:
		store, err = storage.NewFileStore(cfg.Path)
	case SQLite:
		store, err = storage.NewSQLiteStore(cfg.Path)
	case Mongo:
		store, err = storage.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Type, err)
	}

	if cfg.CacheSize > 0 && cfg.Type != Memory {
		store = storage.NewCachedStore(store, cfg.CacheSize, cfg.CacheTTL)
	}

	f.logger.Info("Initialized store",
		"backend", cfg.Type.String(),
		"path", cfg.Path,
		"cache_size", cfg.CacheSize)
	return store, nil
}
