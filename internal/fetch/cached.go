// Package fetch - cached.go keeps recently extracted postings in memory.
package fetch

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched posting is reused.
const DefaultCacheTTL = 15 * time.Minute

type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// Cache is an in-memory, TTL-bounded store of fetch results keyed by URL.
// A posting fetched for preview is reused when the same URL is analyzed moments later.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache. A non-positive ttl selects DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached result for url if it is still fresh.
func (c *Cache) Get(url string) (*Result, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[url]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, url)
		return nil, false
	}
	copied := *entry.result
	return &copied, true
}

// Put stores a successful result.
func (c *Cache) Put(url string, result *Result) {
	if c == nil || result == nil {
		return
	}
	copied := *result
	c.mu.Lock()
	c.entries[url] = cacheEntry{result: &copied, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Prune removes expired entries and returns how many were dropped.
func (c *Cache) Prune() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for url, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, url)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
