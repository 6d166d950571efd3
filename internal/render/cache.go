package render

import (
	"sync"
	"time"
)

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache keeps rendered charts in memory for a fixed TTL.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	cacheTTL time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		cacheTTL: ttl,
	}
}

// Get returns the cached bytes for key if still valid.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

// Set stores data under key and drops any expired entries.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: now.Add(c.cacheTTL)}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
