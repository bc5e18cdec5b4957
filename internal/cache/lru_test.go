package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a")
	}
	c.Set("c", "3") // evicts b
	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("size=%d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.SetWithTTL("b", "2", time.Hour)

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be expired")
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Fatalf("b should still be live")
	}

	c.Set("c", "3")
	clock.t = clock.t.Add(2 * time.Hour)
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("cleaned %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size=%d", c.Size())
	}
}

func TestGetOrCreate(t *testing.T) {
	c, _ := newTestCache(10, time.Minute)
	calls := 0
	create := func() string { calls++; return "v" }
	if v := c.GetOrCreate("k", create); v != "v" {
		t.Fatalf("got %q", v)
	}
	c.GetOrCreate("k", create)
	if calls != 1 {
		t.Fatalf("create called %d times", calls)
	}
}

func TestManagerCleanAll(t *testing.T) {
	c, clock := newTestCache(10, time.Second)
	c.Set("a", "1")
	m := NewManager(nil)
	m.Register(c)
	clock.t = clock.t.Add(time.Minute)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("cleaned %d", n)
	}
}
