// ABOUTME: In-memory image cache keyed by sha256 of the source text plus output format.
// ABOUTME: Wraps any byte renderer with TTL expiry, hit/miss hooks for metrics, and pruning of stale entries.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// RenderFunc renders source text (DOT or an encoded chart description) to format.
type RenderFunc func(ctx context.Context, source string, format string) ([]byte, error)

type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// RenderCache wraps a rendering function with an in-memory cache.
// Entries expire after the configured TTL. Errors are never cached.
type RenderCache struct {
	renderFn RenderFunc
	ttl      time.Duration
	entries  map[string]*cacheEntry
	mu       sync.RWMutex

	onHit  func()
	onMiss func()
}

// CacheOption configures a RenderCache.
type CacheOption func(*RenderCache)

// WithHooks registers callbacks run on every cache hit and miss.
func WithHooks(hit, miss func()) CacheOption {
	return func(c *RenderCache) {
		c.onHit = hit
		c.onMiss = miss
	}
}

// NewRenderCache creates a RenderCache wrapping renderFn.
func NewRenderCache(renderFn RenderFunc, ttl time.Duration, opts ...CacheOption) *RenderCache {
	c := &RenderCache{
		renderFn: renderFn,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Render returns the cached output for (source, format) or renders and stores it.
func (c *RenderCache) Render(ctx context.Context, source string, format string) ([]byte, error) {
	key := cacheKey(source, format)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Since(entry.createdAt) < c.ttl {
		if c.onHit != nil {
			c.onHit()
		}
		return entry.data, nil
	}

	if c.onMiss != nil {
		c.onMiss()
	}
	data, err := c.renderFn(ctx, source, format)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{data: data, createdAt: time.Now()}
	c.mu.Unlock()

	return data, nil
}

// Prune drops expired entries and returns how many were removed.
func (c *RenderCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if time.Since(e.createdAt) >= c.ttl {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of entries currently in the cache (including expired ones).
func (c *RenderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *RenderCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

func cacheKey(source string, format string) string {
	return fmt.Sprintf("%x:%s", sha256.Sum256([]byte(source)), format)
}
