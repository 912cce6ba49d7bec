package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUCache is a size-bounded ResultCache for deployments that want a hard
// entry cap instead of the default unbounded map. Once full, the least
// recently used entry is evicted to make room. There is no sweep goroutine:
// expired entries are dropped on lookup or pushed out by newer ones.
type LRUCache struct {
	capacity   int
	defaultTTL time.Duration

	mu    sync.Mutex
	items map[string]*lruEntry
	order *list.List // front = most recently used
}

type lruEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
	element   *list.Element
}

// NewLRUCache creates a bounded cache holding at most capacity entries.
func NewLRUCache(capacity int, defaultTTL time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}

	return &LRUCache{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*lruEntry),
		order:      list.New(),
	}
}

// Get retrieves a cached result. An expired entry is evicted on lookup and
// reported as a plain miss; a fresh hit moves the entry to the front.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		cacheMisses.WithLabelValues("lru").Inc()
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		c.remove(e)
		cacheMisses.WithLabelValues("lru").Inc()
		return nil, false
	}

	c.order.MoveToFront(e.element)
	cacheHits.WithLabelValues("lru").Inc()
	return e.data, true
}

// Set inserts or overwrites the entry unconditionally, evicting from the
// least recently used end while the cache is at capacity.
func (c *LRUCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.data = data
		e.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(e.element)
		return
	}

	for len(c.items) >= c.capacity {
		c.evictOldest()
	}

	e := &lruEntry{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
	e.element = c.order.PushFront(e)
	c.items[key] = e
}

// Clear removes all entries.
func (c *LRUCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*lruEntry)
	c.order.Init()
}

// Size returns the number of entries, expired or not.
func (c *LRUCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close is a no-op: the LRU cache owns no background goroutine.
func (c *LRUCache) Close() {}

// evictOldest removes the least recently used entry.
// Must be called with the lock held.
func (c *LRUCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.remove(oldest.Value.(*lruEntry))
}

// remove removes an entry from both the map and the order list.
// Must be called with the lock held.
func (c *LRUCache) remove(e *lruEntry) {
	c.order.Remove(e.element)
	delete(c.items, e.key)
}

// Ensure LRUCache implements ResultCache
var _ ResultCache = (*LRUCache)(nil)
