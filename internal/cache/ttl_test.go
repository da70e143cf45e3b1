package cache

import (
	"testing"
	"time"
)

func TestTTLCache(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := New(60*time.Second, clock)

	if _, ok := c.Get("k"); ok {
		t.Error("empty cache returned a value")
	}

	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got.(string) != "v" {
		t.Errorf("Get = %v, %v; want v, true", got, ok)
	}

	// Inside the window.
	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired before TTL")
	}

	// Past the window.
	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past TTL")
	}
}

func TestTTLCacheInvalidate(t *testing.T) {
	c := New(time.Minute, nil)
	c.Set("k", 1)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("invalidated entry still readable")
	}
}

func TestTTLCacheSetRefreshesExpiry(t *testing.T) {
	now := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)
	c := New(60*time.Second, func() time.Time { return now })

	c.Set("k", 1)
	now = now.Add(50 * time.Second)
	c.Set("k", 2)
	now = now.Add(50 * time.Second)

	got, ok := c.Get("k")
	if !ok || got.(int) != 2 {
		t.Errorf("Get = %v, %v; want 2, true after refresh", got, ok)
	}
}
