package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(30 * time.Second)
	c.Set("y", 3)
	now = now.Add(45 * time.Second)

	if _, ok := c.Get("x"); ok {
		t.Error("x should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Errorf("CleanExpired() = %d, want 0 after lazy removal of x", n)
	}
	if v, ok := c.Get("y"); !ok || v != 3 {
		t.Errorf("Get(y) = %d, %v", v, ok)
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses", hits, misses)
	}
}

func TestJanitorSweep(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Second)

	if n := NewJanitor(nil, c).Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}
