package tz

import (
	"context"
	"math"
	"sync"
	"time"
)

// CoordPrecision is the number of decimal places lat/lon are rounded to
// when keying the cache (about 1 km).
const CoordPrecision = 2

type cacheKey struct {
	lat, lon float64
	day      int64 // UTC day number, since DST can change between days
}

// Cache memoizes a Provider by rounded coordinates and UTC day. Failed
// lookups are not cached. It is safe for concurrent use.
type Cache struct {
	next Provider

	mu      sync.RWMutex
	entries map[cacheKey]Offset
	hits    int
	misses  int
}

// NewCache wraps next.
func NewCache(next Provider) *Cache {
	return &Cache{
		next:    next,
		entries: make(map[cacheKey]Offset),
	}
}

// Lookup answers from the cache or delegates to the wrapped provider.
func (c *Cache) Lookup(ctx context.Context, lat, lon float64, at time.Time) (Offset, error) {
	key := cacheKey{
		lat: roundTo(lat, CoordPrecision),
		lon: roundTo(lon, CoordPrecision),
		day: at.UTC().Unix() / 86400,
	}

	c.mu.RLock()
	off, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return off, nil
	}

	off, err := c.next.Lookup(ctx, lat, lon, at)
	if err != nil {
		return Offset{}, err
	}

	c.mu.Lock()
	c.entries[key] = off
	c.misses++
	c.mu.Unlock()
	return off, nil
}

// Stats returns cache hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
