package geo

import (
	"container/list"
	"sync"

	"github.com/z3r0privacy/santasleigh/internal/model"
)

// DefaultCacheCapacity matches the ~65k-entry bounded LRU the source used.
const DefaultCacheCapacity = 65536

// pairKey canonicalizes an unordered pair of points into a comparable map
// key, rounding to avoid float-equality surprises while still
// distinguishing geographically distinct points.
type pairKey struct {
	aLat, aLon, bLat, bLon int64
}

const roundScale = 1e6

func round(f float64) int64 {
	if f >= 0 {
		return int64(f*roundScale + 0.5)
	}
	return int64(f*roundScale - 0.5)
}

func makeKey(a, b model.Point) pairKey {
	ka := [2]int64{round(a.Lat), round(a.Lon)}
	kb := [2]int64{round(b.Lat), round(b.Lon)}
	if ka[0] > kb[0] || (ka[0] == kb[0] && ka[1] > kb[1]) {
		ka, kb = kb, ka
	}
	return pairKey{ka[0], ka[1], kb[0], kb[1]}
}

type cacheEntry struct {
	key   pairKey
	value float64
}

// Cache is a thread-safe, bounded LRU memoizing Haversine distances,
// keyed on the canonicalized (smaller tuple first) pair of endpoints so
// that Distance(a, b) and Distance(b, a) share a slot.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[pairKey]*list.Element
	order    *list.List // front = most recently used

	hits   uint64
	misses uint64
}

// NewCache builds a Cache with the given capacity. A non-positive capacity
// falls back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[pairKey]*list.Element, capacity),
		order:    list.New(),
	}
}

// Distance returns the Haversine distance between a and b, consulting and
// populating the LRU cache.
func (c *Cache) Distance(a, b model.Point) float64 {
	key := makeKey(a, b)

	c.mu.Lock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		v := el.Value.(*cacheEntry).value
		c.mu.Unlock()
		return v
	}
	c.misses++
	c.mu.Unlock()

	// Compute outside the lock: haversine is pure and cheap, but this
	// keeps the critical section small under contention from the fast
	// candidate worker pool.
	d := Haversine(a, b)

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return el.Value.(*cacheEntry).value
	}
	el := c.order.PushFront(&cacheEntry{key: key, value: d})
	c.items[key] = el
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
	return d
}

// Hits returns the number of cache hits observed so far.
func (c *Cache) Hits() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Misses returns the number of cache misses observed so far.
func (c *Cache) Misses() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}

// Len returns the number of entries currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
