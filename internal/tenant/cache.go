package tenant

import (
	"sync"
	"time"
)

type cacheEntry struct {
	storeID   int64
	expiresAt time.Time
}

// Cache binds hosts to store ids. Entries expire after ttl; a non-positive ttl
// keeps them for the life of the cache.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the store id bound to host if the binding is still live.
func (c *Cache) Get(host string) (int64, bool) {
	c.mu.RLock()
	entry, ok := c.entries[host]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if c.expired(entry) {
		c.mu.Lock()
		if current, ok := c.entries[host]; ok && c.expired(current) {
			delete(c.entries, host)
		}
		c.mu.Unlock()
		return 0, false
	}
	return entry.storeID, true
}

// Set binds host to storeID, replacing any previous binding.
func (c *Cache) Set(host string, storeID int64) {
	entry := cacheEntry{storeID: storeID}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[host] = entry
	c.mu.Unlock()
}

func (c *Cache) Invalidate(host string) {
	c.mu.Lock()
	delete(c.entries, host)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) expired(entry cacheEntry) bool {
	return !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt)
}
