package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	cachedAt  time.Time
	expiresAt time.Time
}

// Cache is a TTL-based response cache. Expired entries are evicted lazily on
// lookup; there is no background sweeper. The TTL is sampled at store time, so
// changing it later does not rewrite the expiry of existing entries.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	ttl     time.Duration

	// now is swappable for tests
	now func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key along with the time it was stored.
// An expired entry is evicted and reported as a miss.
func (c *Cache[V]) Get(key string) (V, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, time.Time{}, false
	}

	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, time.Time{}, false
	}

	return e.value, e.cachedAt, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = entry[V]{
		value:     value,
		cachedAt:  now,
		expiresAt: now.Add(c.ttl),
	}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry[V])
}

func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache[V]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ttl
}

// SetTTL changes the TTL applied to subsequent stores.
func (c *Cache[V]) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
}

// SetNowFunc overrides the clock, for tests.
func (c *Cache[V]) SetNowFunc(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}
