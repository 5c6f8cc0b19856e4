package cache

import (
	"fmt"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// *For any* sequence of Put/Get/advance operations, the cache SHALL never
// hold more entries than its capacity and SHALL never return a payload
// whose TTL has elapsed.
func TestPropertyCapacityAndTTLBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(rt, "capacity")
		c, clock := newTestCache(capacity)

		// created tracks each live key's creation time and TTL so the
		// test can decide independently whether a hit is legal.
		type meta struct {
			createdAt time.Time
			ttl       time.Duration
		}
		created := map[string]meta{}

		numOps := rapid.IntRange(1, 60).Draw(rt, "numOps")
		for i := 0; i < numOps; i++ {
			key := fmt.Sprintf("k%d", rapid.IntRange(0, 12).Draw(rt, fmt.Sprintf("key_%d", i)))

			switch rapid.IntRange(0, 2).Draw(rt, fmt.Sprintf("op_%d", i)) {
			case 0:
				ttl := time.Duration(rapid.IntRange(1, 90).Draw(rt, fmt.Sprintf("ttl_%d", i))) * time.Second
				c.Put(key, "payload-"+key, ttl)
				created[key] = meta{createdAt: clock.now, ttl: ttl}
			case 1:
				_, ok := c.Get(key)
				if m, tracked := created[key]; tracked && ok {
					if clock.now.Sub(m.createdAt) >= m.ttl {
						rt.Fatalf("expired entry %q returned at +%v (ttl %v)",
							key, clock.now.Sub(m.createdAt), m.ttl)
					}
				}
			case 2:
				clock.advance(time.Duration(rapid.IntRange(1, 45).Draw(rt, fmt.Sprintf("adv_%d", i))) * time.Second)
			}

			if c.Len() > capacity {
				rt.Fatalf("len %d exceeds capacity %d after op %d", c.Len(), capacity, i)
			}
		}
	})
}

// *For any* key put with a positive TTL, a Get before the TTL elapses and
// before capacity pressure SHALL return the stored payload.
func TestPropertyFreshEntryRetrievable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c, clock := newTestCache(4)

		ttl := time.Duration(rapid.IntRange(2, 600).Draw(rt, "ttlSeconds")) * time.Second
		wait := time.Duration(rapid.IntRange(0, int(ttl/time.Second)-1).Draw(rt, "waitSeconds")) * time.Second

		c.Put("key", "payload", ttl)
		clock.advance(wait)

		got, ok := c.Get("key")
		if !ok || got != "payload" {
			rt.Fatalf("fresh entry not retrievable after %v of %v: (%q, %v)", wait, ttl, got, ok)
		}
	})
}
