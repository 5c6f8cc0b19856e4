// Package cache provides the bounded TTL+LRU lookup cache shared by every
// task that performs an expensive external lookup (curriculum standards
// search, document extraction).
package cache

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry is one cached lookup result. An entry is visible only while
// now - CreatedAt < TTL; expired entries are treated as absent and removed
// on access.
type Entry struct {
	Key        string        `yaml:"key"`
	Payload    string        `yaml:"payload"`
	TTL        time.Duration `yaml:"ttl"`
	CreatedAt  time.Time     `yaml:"created_at"`
	LastAccess time.Time     `yaml:"last_access"`
	Hits       int           `yaml:"hits"`
}

func (e *Entry) expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) >= e.TTL
}

// Stats summarizes cache effectiveness for the dashboard and MCP info tool.
type Stats struct {
	Size      int `yaml:"size"`
	Capacity  int `yaml:"capacity"`
	Hits      int `yaml:"hits"`
	Misses    int `yaml:"misses"`
	Evictions int `yaml:"evictions"`
}

// LookupCache is a thread-safe key/value cache with per-entry TTL and a
// bounded capacity. On capacity overflow, expired entries are evicted
// before falling back to the entry with the oldest last-access time.
// Concurrent Get/Put are serialized per cache, so the index cannot lose
// updates; two concurrent misses for the same key may both consult the
// underlying producer — callers collapse those with singleflight.
type LookupCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	lru      *list.List // front = most recently used
	capacity int

	hits      int
	misses    int
	evictions int

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates a LookupCache with the given capacity. Capacity must be
// positive.
func New(capacity int) *LookupCache {
	if capacity < 1 {
		capacity = 1
	}
	return &LookupCache{
		items:    make(map[string]*list.Element),
		lru:      list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the payload for key if a fresh entry exists. An expired entry
// is treated as absent and physically removed rather than returned stale.
func (c *LookupCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}

	entry := elem.Value.(*Entry)
	now := c.now()
	if entry.expired(now) {
		c.removeElement(elem)
		c.misses++
		return "", false
	}

	entry.LastAccess = now
	entry.Hits++
	c.lru.MoveToFront(elem)
	c.hits++
	return entry.Payload, true
}

// Put stores payload under key with the given ttl, evicting first if the
// cache is at capacity. Putting an existing key refreshes it in place.
func (c *LookupCache) Put(key, payload string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*Entry)
		entry.Payload = payload
		entry.TTL = ttl
		entry.CreatedAt = now
		entry.LastAccess = now
		c.lru.MoveToFront(elem)
		return
	}

	if c.lru.Len() >= c.capacity {
		c.evictOne(now)
	}

	entry := &Entry{
		Key:        key,
		Payload:    payload,
		TTL:        ttl,
		CreatedAt:  now,
		LastAccess: now,
	}
	c.items[key] = c.lru.PushFront(entry)
}

// EvictExpired removes every expired entry and returns how many were
// dropped.
func (c *LookupCache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*Entry).expired(now) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *LookupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns a snapshot of the cache counters.
func (c *LookupCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evictOne frees exactly one slot: an expired entry if any exists,
// otherwise the entry with the oldest last-access time. TTL eviction takes
// priority over LRU eviction.
func (c *LookupCache) evictOne(now time.Time) {
	for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
		if elem.Value.(*Entry).expired(now) {
			c.removeElement(elem)
			c.evictions++
			return
		}
	}

	var oldest *list.Element
	for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
		entry := elem.Value.(*Entry)
		if oldest == nil || entry.LastAccess.Before(oldest.Value.(*Entry).LastAccess) {
			oldest = elem
		}
	}
	if oldest != nil {
		c.removeElement(oldest)
		c.evictions++
	}
}

// removeElement drops an element from both the list and the index.
// Caller holds the lock.
func (c *LookupCache) removeElement(elem *list.Element) {
	c.lru.Remove(elem)
	delete(c.items, elem.Value.(*Entry).Key)
}

// snapshotFile is the on-disk form of the cache contents.
type snapshotFile struct {
	Entries []Entry `yaml:"entries"`
}

// Snapshot writes the fresh entries to a YAML file so an expensive lookup
// survives a process restart. Expired entries are dropped on the way out.
func (c *LookupCache) Snapshot(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var snap snapshotFile
	for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
		entry := elem.Value.(*Entry)
		if entry.expired(now) {
			continue
		}
		snap.Entries = append(snap.Entries, *entry)
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("snapshotting cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("snapshotting cache: %w", err)
	}
	return nil
}

// Restore loads a snapshot written by Snapshot. A missing file is not an
// error; still-fresh entries are inserted with their remaining TTL intact.
func (c *LookupCache) Restore(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("restoring cache: %w", err)
	}

	var snap snapshotFile
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("restoring cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for i := range snap.Entries {
		entry := snap.Entries[i]
		if entry.expired(now) {
			continue
		}
		// A key the cache already holds is refreshed in place, same as
		// Put; pushing a second element would desynchronize the list
		// from the index.
		if elem, ok := c.items[entry.Key]; ok {
			*elem.Value.(*Entry) = entry
			c.lru.MoveToFront(elem)
			continue
		}
		if c.lru.Len() >= c.capacity {
			c.evictOne(now)
		}
		e := entry
		c.items[e.Key] = c.lru.PushFront(&e)
	}
	return nil
}
