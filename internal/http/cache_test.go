package http

import (
	"strconv"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := newLRUCache[string](10, time.Minute)

	c.Set("a", "value")
	got, ok := c.Get("a")
	if !ok || got != "value" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on a missing key reported a hit")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := newLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)
	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache[int](3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	// Touch 0 so 1 becomes the eviction candidate.
	c.Get("0")
	c.Set("3", 3)

	if _, ok := c.Get("1"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("0"); !ok {
		t.Error("recently used entry was evicted")
	}
	if c.Size() != 3 {
		t.Errorf("Size() = %d, want 3", c.Size())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := newLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "value")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still readable")
	}
}

func TestCacheCleanExpired(t *testing.T) {
	c := newLRUCache[string](10, 10*time.Millisecond)

	c.Set("a", "x")
	c.Set("b", "y")
	time.Sleep(25 * time.Millisecond)
	c.Set("c", "z")

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestCacheDelete(t *testing.T) {
	c := newLRUCache[string](10, time.Minute)

	c.Set("a", "value")
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still readable")
	}
	c.Delete("a") // deleting twice is a no-op
}
