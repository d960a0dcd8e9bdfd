package storage

import (
	"context"
	"errors"
	"time"

	"expenseminimizer/internal/cache"
)

// CachedStore fronts another store with an LRU read cache. Writes go through
// to the inner store before the cache is updated, so a failed write never
// leaves a value visible that was not persisted.
type CachedStore struct {
	inner Store
	cache *cache.LRUCache[string]
}

func NewCachedStore(inner Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: cache.NewLRUCache[string](size, ttl)}
}

func (s *CachedStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}
	v, err := s.inner.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.cache.Delete(key)
		}
		return "", err
	}
	s.cache.Set(key, v)
	return v, nil
}

func (s *CachedStore) Set(ctx context.Context, key, value string) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		s.cache.Delete(key)
		return err
	}
	s.cache.Set(key, value)
	return nil
}

func (s *CachedStore) Remove(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return s.inner.Remove(ctx, key)
}

func (s *CachedStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.inner)
}

// Cache exposes the underlying cache so callers can register it for
// periodic expiry.
func (s *CachedStore) Cache() *cache.LRUCache[string] { return s.cache }

func (s *CachedStore) Close() error { return s.inner.Close() }
