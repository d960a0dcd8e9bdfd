package backend

import (
	"fmt"
	"time"

	"expenseminimizer/internal/config"
)

// Type names a storage backend.
type Type string

const (
	Memory Type = config.BackendMemory
	File   Type = config.BackendFile
	SQLite Type = config.BackendSQLite
	Mongo  Type = config.BackendMongo
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, File, SQLite, Mongo:
		return true
	default:
		return false
	}
}

// Types returns every supported backend.
func Types() []Type {
	return []Type{Memory, File, SQLite, Mongo}
}

// Config holds what the factory needs to open a store.
type Config struct {
	Type Type

	// Path is the sqlite database file or the file-store directory.
	Path string

	MongoURI      string
	MongoDatabase string

	// CacheSize > 0 wraps the store in an LRU read cache.
	CacheSize int
	CacheTTL  time.Duration
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(appConfig.StoreBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.StoreBackend)
	}
	return Config{
		Type:          t,
		Path:          appConfig.StorePath,
		MongoURI:      appConfig.MongoURI,
		MongoDatabase: appConfig.MongoDatabase,
		CacheSize:     appConfig.StoreCacheSize,
		CacheTTL:      10 * time.Minute,
	}, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case SQLite, File:
		if c.Path == "" {
			return fmt.Errorf("path is required for %s backend", c.Type)
		}
	case Mongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("mongo URI and database are required for mongo backend")
		}
	}
	return nil
}
