// Package cache provides the result cache consumed by the AI assist service.
// Results of expensive remote calls are stored under derived request
// fingerprints with operation-specific TTLs, so repeating an identical request
// within its freshness window never reaches the provider.
package cache

import (
	"context"
	"sync"
	"time"
)

// ResultCache is the cache backend consumed by the assist service.
// A backend can never fail a lookup: shared-backend I/O errors degrade to a
// miss, and a miss is a normal return, not an error.
type ResultCache interface {
	// Get retrieves a cached result.
	// Returns: payload, whether a fresh entry exists
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set inserts or overwrites the entry unconditionally.
	// ttl <= 0 uses the backend's default TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)

	// Clear unconditionally empties the cache.
	Clear(ctx context.Context)

	// Close releases backend resources.
	Close()
}

// Entry is a cached result. Entries are overwritten wholesale on refresh,
// never mutated in place.
type Entry struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config configures a MemoryCache.
type Config struct {
	DefaultTTL    time.Duration // Default TTL for entries (default: 5 minutes)
	SweepInterval time.Duration // Interval for expired entry sweeps (default: 1 minute)
}

// DefaultConfig returns the default memory cache configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTL:    5 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// MemoryCache is the in-process ResultCache. Expired entries are evicted
// lazily on Get and proactively by a periodic sweep, so memory is reclaimed
// even for keys that are never looked up again. There is no size bound: key
// cardinality is naturally limited to operations times truncated inputs, and
// the cache is a performance layer, not a correctness-bearing store. A
// restart simply starts cold.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	defaultTTL time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sweepInterval time.Duration
}

// NewMemoryCache creates a memory cache and starts its sweep goroutine.
func NewMemoryCache(cfg Config) *MemoryCache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &MemoryCache{
		entries:       make(map[string]*Entry),
		defaultTTL:    cfg.DefaultTTL,
		ctx:           ctx,
		cancel:        cancel,
		sweepInterval: cfg.SweepInterval,
	}

	// Start background sweep
	c.wg.Add(1)
	go c.sweepLoop()

	return c
}

// Close stops the sweep goroutine.
func (c *MemoryCache) Close() {
	c.cancel()
	c.wg.Wait()
}

// Get retrieves a cached result. An expired entry is evicted on lookup and
// reported as a plain miss; callers are not told that eviction happened.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		cacheMisses.WithLabelValues("memory").Inc()
		return nil, false
	}

	if time.Now().After(e.ExpiresAt) {
		delete(c.entries, key)
		cacheMisses.WithLabelValues("memory").Inc()
		return nil, false
	}

	cacheHits.WithLabelValues("memory").Inc()
	return e.Data, true
}

// Set inserts or overwrites the entry unconditionally.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Clear removes all entries.
func (c *MemoryCache) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
}

// Size returns the number of entries, expired or not.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// sweepLoop periodically removes expired entries.
func (c *MemoryCache) sweepLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// sweep removes all expired entries.
// Returns the number of entries removed.
func (c *MemoryCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.ExpiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Ensure MemoryCache implements ResultCache
var _ ResultCache = (*MemoryCache)(nil)
