// Package cache provides an in-process LRU cache and a janitor that expires
// stale entries in the background.
package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is the generic cache contract.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically expires entries from registered caches.
type Janitor struct {
	caches []Cleaner
	logger *slog.Logger
}

func NewJanitor(logger *slog.Logger, caches ...Cleaner) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{caches: caches, logger: logger}
}

// Run sweeps every interval until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				j.logger.Debug("Expired cache entries", "count", n)
			}
		}
	}
}

// Sweep expires entries once and returns how many were dropped.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}
