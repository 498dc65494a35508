package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a response stays cached unless configured otherwise.
const DefaultTTL = time.Hour

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is an in-process key/value store with per-entry expiry. Expired
// entries are evicted when looked up; there is no background sweep.
// It is an optimization only and is never persisted.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// New creates an empty cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Key joins a resource name and the canonical form of its parameters.
func Key(resource, canonical string) string {
	return resource + ":" + canonical
}

// Get returns the value and true if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if cur, ok := c.items[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the cache's TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key, replacing any existing entry.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Clear removes every key starting with prefix, or everything when prefix is empty.
// It returns the number of removed entries.
func (c *Cache) Clear(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prefix == "" {
		n := len(c.items)
		c.items = make(map[string]entry)
		return n
	}
	n := 0
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// TTL returns the default entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }
