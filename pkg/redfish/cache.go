package redfish

import (
	"context"
	"sync"

	"github.com/openrack-io/redfish-client/internal/constants"
)

// Cache stores responses keyed by the exact request path (including query
// string). The connector stores only 200 GET responses; backends never need
// to enforce that themselves. Delete of an absent key is a no-op, never an
// error.
type Cache interface {
	Get(ctx context.Context, key string) (*Response, error)
	Set(ctx context.Context, key string, resp *Response) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is a mutex-guarded in-process cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Response
	maxSize int
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
// A non-positive maxSize falls back to the default limit.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*Response),
		maxSize: maxSize,
	}
}

// Get retrieves a cached response.
func (c *MemoryCache) Get(ctx context.Context, key string) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	return resp, nil
}

// Set stores a response, evicting an arbitrary entry when full.
func (c *MemoryCache) Set(ctx context.Context, key string, resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		for victim := range c.entries {
			delete(c.entries, victim)

			break
		}
	}

	c.entries[key] = resp

	return nil
}

// Delete removes a single entry. Absent keys are a no-op.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Response)

	return nil
}

// Has checks whether a key is present.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[key]

	return ok
}

// NoOpCache implements the Cache contract without storing anything: Get
// always misses and Set silently discards its input. Injecting it keeps the
// connector cache-policy-agnostic when caching is disabled.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always reports a miss.
func (c *NoOpCache) Get(ctx context.Context, key string) (*Response, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, resp *Response) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}
