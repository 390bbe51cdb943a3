package redis

import "sync"

// dedupeCache is a bounded recent-id cache. Once full, the oldest id is
// evicted; at-least-once delivery only needs the window to cover plausible
// redelivery gaps, not all history.
type dedupeCache struct {
	mu   sync.Mutex
	cap  int
	set  map[string]struct{}
	ring []string
	next int
}

func newDedupeCache(capacity int) *dedupeCache {
	if capacity <= 0 {
		capacity = 512
	}
	return &dedupeCache{
		cap:  capacity,
		set:  make(map[string]struct{}, capacity),
		ring: make([]string, capacity),
	}
}

// Add records the id and reports whether it was newly seen.
func (c *dedupeCache) Add(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.set[id]; ok {
		return false
	}
	if old := c.ring[c.next]; old != "" {
		delete(c.set, old)
	}
	c.ring[c.next] = id
	c.next = (c.next + 1) % c.cap
	c.set[id] = struct{}{}
	return true
}

// Seen reports whether the id is currently in the window without recording it.
func (c *dedupeCache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.set[id]
	return ok
}
