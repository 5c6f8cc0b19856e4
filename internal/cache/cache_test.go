package cache

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(capacity int) (*LookupCache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	c := New(capacity)
	c.now = func() time.Time { return clock.now }
	return c, clock
}

func TestPutGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(4)

	c.Put("standards:5:математика", "стандарти", time.Hour)
	got, ok := c.Get("standards:5:математика")
	if !ok || got != "стандарти" {
		t.Fatalf("Get = (%q, %v)", got, ok)
	}

	if _, ok := c.Get("standards:6:математика"); ok {
		t.Fatalf("absent key reported present")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit 1 miss", stats)
	}
}

func TestExpiredEntryIsAbsentAndRemoved(t *testing.T) {
	c, clock := newTestCache(4)

	c.Put("k", "v", time.Minute)
	clock.advance(time.Minute) // expiry boundary: ttl elapsed means expired

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not physically removed, len=%d", c.Len())
	}

	// Re-putting after expiry works like a fresh insert.
	c.Put("k", "v2", time.Minute)
	if got, ok := c.Get("k"); !ok || got != "v2" {
		t.Fatalf("reinserted entry = (%q, %v)", got, ok)
	}
}

func TestPutRefreshesInPlace(t *testing.T) {
	c, clock := newTestCache(2)

	c.Put("k", "old", time.Minute)
	clock.advance(30 * time.Second)
	c.Put("k", "new", time.Minute)
	clock.advance(45 * time.Second)

	// 75s after first insert; refresh reset CreatedAt so entry is fresh.
	if got, ok := c.Get("k"); !ok || got != "new" {
		t.Fatalf("refreshed entry = (%q, %v)", got, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("refresh duplicated the entry, len=%d", c.Len())
	}
}

func TestEvictionPrefersExpiredOverLRU(t *testing.T) {
	c, clock := newTestCache(2)

	c.Put("short", "v", time.Minute)
	clock.advance(time.Second)
	c.Put("long", "v", time.Hour)
	clock.advance(5 * time.Minute) // "short" has expired, "long" has not

	// "long" is now also least-recently used relative to nothing — touch it
	// to make it most recent, then verify the expired entry goes first.
	c.Put("new", "v", time.Hour)

	if _, ok := c.Get("long"); !ok {
		t.Fatalf("fresh entry evicted instead of the expired one")
	}
	if _, ok := c.Get("new"); !ok {
		t.Fatalf("inserted entry missing")
	}
	if c.Stats().Evictions != 1 {
		t.Fatalf("evictions = %d, want 1", c.Stats().Evictions)
	}
}

func TestEvictionFallsBackToOldestAccess(t *testing.T) {
	c, clock := newTestCache(2)

	c.Put("a", "v", time.Hour)
	clock.advance(time.Second)
	c.Put("b", "v", time.Hour)
	clock.advance(time.Second)

	// Touch "a" so "b" holds the oldest last-access time.
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("setup get failed")
	}
	clock.advance(time.Second)

	c.Put("c", "v", time.Hour)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("LRU entry should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("recently used entry evicted")
	}
}

func TestEvictExpired(t *testing.T) {
	c, clock := newTestCache(8)

	c.Put("a", "v", time.Minute)
	c.Put("b", "v", time.Minute)
	c.Put("c", "v", time.Hour)
	clock.advance(2 * time.Minute)

	if removed := c.EvictExpired(); removed != 2 {
		t.Fatalf("EvictExpired = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestSnapshotRestore(t *testing.T) {
	c, clock := newTestCache(8)
	path := filepath.Join(t.TempDir(), "cache.yaml")

	c.Put("fresh", "v1", time.Hour)
	c.Put("stale", "v2", time.Minute)
	clock.advance(5 * time.Minute)

	if err := c.Snapshot(path); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	restored, _ := newTestCache(8)
	restored.now = c.now
	if err := restored.Restore(path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, ok := restored.Get("stale"); ok {
		t.Fatalf("expired entry survived the snapshot")
	}
	if got, ok := restored.Get("fresh"); !ok || got != "v1" {
		t.Fatalf("fresh entry lost: (%q, %v)", got, ok)
	}
}

func TestRestoreOverWarmCacheRefreshesInPlace(t *testing.T) {
	c, clock := newTestCache(4)
	path := filepath.Join(t.TempDir(), "cache.yaml")

	c.Put("shared", "from-snapshot", time.Hour)
	c.Put("snapshot-only", "v", time.Hour)
	if err := c.Snapshot(path); err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	warm, _ := newTestCache(4)
	warm.now = c.now
	warm.Put("shared", "live", time.Hour)
	warm.Put("warm-only", "v", time.Hour)

	if err := warm.Restore(path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	// Three distinct keys; a duplicate element for "shared" would overcount.
	if warm.Len() != 3 {
		t.Fatalf("len = %d, want 3 distinct keys", warm.Len())
	}
	if got, ok := warm.Get("shared"); !ok || got != "from-snapshot" {
		t.Fatalf("overlapping key = (%q, %v), want snapshot payload", got, ok)
	}

	// Fill past capacity; a stranded list element would push Len over the
	// bound and survive a full expiry sweep.
	warm.Put("d", "v", time.Hour)
	clock.advance(time.Second)
	warm.Put("e", "v", time.Hour)
	if warm.Len() > 4 {
		t.Fatalf("len = %d exceeds capacity after restore", warm.Len())
	}

	clock.advance(2 * time.Hour)
	warm.EvictExpired()
	if warm.Len() != 0 {
		t.Fatalf("len = %d after all entries expired and evicted", warm.Len())
	}
}

func TestRestoreMissingFileIsNoop(t *testing.T) {
	c, _ := newTestCache(4)
	if err := c.Restore(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing snapshot must not error: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("len = %d after restoring nothing", c.Len())
	}
}

func TestZeroCapacityClamped(t *testing.T) {
	c := New(0)
	c.Put("k", "v", time.Hour)
	if got, ok := c.Get("k"); !ok || got != "v" {
		t.Fatalf("single-slot cache broken: (%q, %v)", got, ok)
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	c, clock := newTestCache(3)
	for i := 0; i < 20; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v", time.Hour)
		clock.advance(time.Second)
		if c.Len() > 3 {
			t.Fatalf("len = %d exceeds capacity after %d puts", c.Len(), i+1)
		}
	}
}
