package trend

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCacheSize is the number of results kept by NewCache when no capacity is given
const DefaultCacheSize = 256

// CacheStats reports cache usage
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// Cache memoizes trend results in a bounded LRU. It is safe for concurrent use.
// Failed tests are never cached.
type Cache struct {
	mu       sync.Mutex
	lru      *lru.Cache
	capacity int
	hits     uint64
	misses   uint64
}

type cacheKey struct {
	series   string
	alpha    float64
	seasonal bool
	period   int
	slope    bool
}

// NewCache creates a cache holding at most capacity results
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &Cache{
		lru:      lru.New(capacity),
		capacity: capacity,
	}
}

// Test returns the memoized result for (x, o) or runs TestWithOptions and stores it
func (c *Cache) Test(x []float64, o Options) (Result, error) {
	key := newCacheKey(x, o)

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return v.(Result), nil
	}
	c.misses++
	c.mu.Unlock()

	res, err := TestWithOptions(x, o)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.lru.Add(key, res)
	c.mu.Unlock()
	return res, nil
}

// Clear drops every entry and resets the counters
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
	c.hits = 0
	c.misses = 0
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     c.lru.Len(),
		Capacity: c.capacity,
	}
}

// newCacheKey copies the exact bits of x so later changes to the caller's slice
// cannot alias a stored entry. A nil series keys apart from an empty one.
func newCacheKey(x []float64, o Options) cacheKey {
	buf := make([]byte, 1, 1+8*len(x))
	if x != nil {
		buf[0] = 1
	}
	for _, v := range x {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	period := o.Period
	if !o.Seasonal {
		period = 0
	}
	return cacheKey{
		series:   string(buf),
		alpha:    o.Alpha,
		seasonal: o.Seasonal,
		period:   period,
		slope:    o.CalculateSlope,
	}
}
