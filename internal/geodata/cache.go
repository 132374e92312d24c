package geodata

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache memoizes loaded datasets by source signature. Entries never
// expire; they are dropped only by explicit invalidation.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	hits    atomic.Int64
	misses  atomic.Int64
}

type cacheEntry struct {
	dataset  *Dataset
	loadedAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewCache creates an empty dataset cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Get retrieves the dataset cached under key, if present.
func (c *Cache) Get(key string) (*Dataset, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.dataset, true
}

// Put stores a dataset under key, replacing any previous entry.
func (c *Cache) Put(key string, ds *Dataset) {
	c.mu.Lock()
	c.entries[key] = &cacheEntry{dataset: ds, loadedAt: time.Now()}
	c.mu.Unlock()
}

// LoadedAt reports when the dataset under key was cached.
func (c *Cache) LoadedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return entry.loadedAt, true
}

// Invalidate drops the entry under key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cached dataset.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Stats returns cache performance statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}
