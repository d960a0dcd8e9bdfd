// Package storage persists opaque string values under string keys. The
// session layer stores one JSON document per ledger month and one for the
// chat history.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been written or was
// removed.
var ErrNotFound = errors.New("storage: key not found")

// Store is a minimal key/value persistence adapter.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Pinger is implemented by stores backed by a remote or on-disk database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s if it supports health checks and reports healthy otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
