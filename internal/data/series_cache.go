package data

import (
	"sync"
	"time"

	"github.com/LLeom997/AlphBasket-sub000/internal/contracts"
)

type cachedSeries struct {
	series   *contracts.AssetSeries
	storedAt time.Time
}

// SeriesCache is an in-process TTL cache of price histories keyed by ticker.
// It is an explicit object handed to CachedProvider, never package state.
type SeriesCache struct {
	mu      sync.RWMutex
	entries map[string]cachedSeries
	ttl     time.Duration
	now     func() time.Time
}

// NewSeriesCache creates a cache whose entries expire after ttl (0 = never)
func NewSeriesCache(ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		entries: make(map[string]cachedSeries),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a fresh entry; expired entries are treated as missing
func (c *SeriesCache) Get(ticker string) (*contracts.AssetSeries, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[ticker]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.series, true
}

// Put stores or replaces the series of a ticker
func (c *SeriesCache) Put(series *contracts.AssetSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[series.Ticker] = cachedSeries{series: series, storedAt: c.now()}
}

// Delete removes a ticker
func (c *SeriesCache) Delete(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, ticker)
}

// Purge drops expired entries and returns how many were removed
func (c *SeriesCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ttl <= 0 {
		return 0
	}
	removed := 0
	for ticker, entry := range c.entries {
		if c.now().Sub(entry.storedAt) > c.ttl {
			delete(c.entries, ticker)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, fresh or not
func (c *SeriesCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
