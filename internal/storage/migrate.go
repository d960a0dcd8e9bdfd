package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema means a previous migration stopped halfway and needs a
// manual fix before the store can open.
var ErrDirtySchema = errors.New("kv schema is dirty")

// MigrateKV brings the kv schema of the database at dbPath up to date and
// returns the resulting schema version. The migrator gets its own
// connection because closing it closes the underlying handle.
func MigrateKV(dbPath string) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration connection: %w", err)
	}
	defer conn.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("load embedded migrations: %w", err)
	}
	target, err := sqlite.WithInstance(conn, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("prepare sqlite migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", target)
	if err != nil {
		return 0, fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch err := m.Up(); {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
	default:
		return 0, fmt.Errorf("apply kv migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read kv schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return version, nil
}
