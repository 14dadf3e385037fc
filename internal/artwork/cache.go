package artwork

import (
	"container/list"
	"sync"
)

// Cache is an LRU map from normalized URL to image bytes whose total value
// size never exceeds its byte budget. Recency is updated on Get and Put.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	budget  int64
	size    int64
	ll      *list.List
	items   map[string]*list.Element
	metrics *Metrics

	hits      uint64
	misses    uint64
	evictions uint64
}

type cacheEntry struct {
	key   string
	value []byte
}

// CacheStats is a point-in-time snapshot of cache occupancy and counters.
type CacheStats struct {
	Entries   int    `json:"entries"`
	Bytes     int64  `json:"bytes"`
	Budget    int64  `json:"budget"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// NewCache returns an empty cache with the given byte budget. metrics may be nil.
func NewCache(budget int64, metrics *Metrics) *Cache {
	if budget < 0 {
		budget = 0
	}
	return &Cache{
		budget:  budget,
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		metrics: metrics,
	}
}

// Get returns the cached bytes for key and marks the entry most recently used.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		c.metrics.observeMiss()
		return nil, false
	}
	c.ll.MoveToFront(elem)
	c.hits++
	c.metrics.observeHit()
	return elem.Value.(*cacheEntry).value, true
}

// Put stores value under key, evicting least recently used entries until the
// budget holds. A value larger than the whole budget is not stored and any
// previous entry for key is dropped. Empty values are ignored.
func (c *Cache) Put(key string, value []byte) bool {
	if len(value) == 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	n := int64(len(value))
	if n > c.budget {
		c.metrics.observeSize(len(c.items), c.size)
		return false
	}
	for c.size+n > c.budget {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions++
		c.metrics.observeEviction()
	}
	c.items[key] = c.ll.PushFront(&cacheEntry{key: key, value: value})
	c.size += n
	c.metrics.observeSize(len(c.items), c.size)
	return true
}

// Remove drops key from the cache.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
		c.metrics.observeSize(len(c.items), c.size)
	}
}

// Purge empties the cache. Counters are kept.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.size = 0
	c.metrics.observeSize(0, 0)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Size returns the total bytes held.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Keys returns cached keys from most to least recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.items))
	for elem := c.ll.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*cacheEntry).key)
	}
	return keys
}

// Stats returns a snapshot of occupancy and counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.items),
		Bytes:     c.size,
		Budget:    c.budget,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *Cache) removeElement(elem *list.Element) {
	entry := c.ll.Remove(elem).(*cacheEntry)
	delete(c.items, entry.key)
	c.size -= int64(len(entry.value))
}
