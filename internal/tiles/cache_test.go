package tiles

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicGetPut(t *testing.T) {
	cache := NewCache(100, time.Hour)

	assert.Nil(t, cache.Get("osm", 16, 32740, 21788))

	data := []byte("tile-bytes")
	cache.Put("osm", 16, 32740, 21788, data)
	assert.Equal(t, data, cache.Get("osm", 16, 32740, 21788))

	// Same coordinate under a different basemap is a separate entry.
	assert.Nil(t, cache.Get("positron", 16, 32740, 21788))
}

func TestCache_TTLExpiration(t *testing.T) {
	cache := NewCache(100, 50*time.Millisecond)

	cache.Put("osm", 1, 0, 0, []byte("tile"))
	assert.NotNil(t, cache.Get("osm", 1, 0, 0))

	time.Sleep(60 * time.Millisecond)
	assert.Nil(t, cache.Get("osm", 1, 0, 0))

	// Expired entry is removed from the map.
	cache.mu.RLock()
	_, exists := cache.entries[tileKey("osm", 1, 0, 0)]
	cache.mu.RUnlock()
	assert.False(t, exists)
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(3, time.Hour)

	cache.Put("a", 0, 0, 0, []byte("1"))
	cache.Put("b", 0, 0, 0, []byte("2"))
	cache.Put("c", 0, 0, 0, []byte("3"))

	// Access "a" so "b" becomes the oldest.
	cache.Get("a", 0, 0, 0)
	cache.Put("d", 0, 0, 0, []byte("4"))

	assert.NotNil(t, cache.Get("a", 0, 0, 0))
	assert.Nil(t, cache.Get("b", 0, 0, 0))
	assert.NotNil(t, cache.Get("c", 0, 0, 0))
	assert.NotNil(t, cache.Get("d", 0, 0, 0))
}

func TestCache_InvalidateBasemap(t *testing.T) {
	cache := NewCache(100, time.Hour)

	cache.Put("osm", 1, 0, 0, []byte("a"))
	cache.Put("osm", 2, 0, 0, []byte("b"))
	cache.Put("imagery", 1, 0, 0, []byte("c"))

	cache.Invalidate("osm")

	assert.Nil(t, cache.Get("osm", 1, 0, 0))
	assert.Nil(t, cache.Get("osm", 2, 0, 0))
	assert.NotNil(t, cache.Get("imagery", 1, 0, 0))
}

func TestCache_Stats(t *testing.T) {
	cache := NewCache(100, time.Hour)

	cache.Put("osm", 0, 0, 0, []byte("1"))
	cache.Get("osm", 0, 0, 0) // hit
	cache.Get("osm", 0, 0, 1) // miss

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 100, stats.MaxEntries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := NewCache(1000, time.Hour)

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			cache.Put("osm", n, 0, 0, []byte("data"))
			cache.Get("osm", n, 0, 0)
		}(i)
	}
	wg.Wait()

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.Entries, 1000)
	assert.True(t, stats.Hits+stats.Misses > 0)
}
