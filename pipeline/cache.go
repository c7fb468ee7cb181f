package pipeline

import "sync"

// Cache stores composite responses keyed by the original query.
type Cache interface {
	Get(query string) (CompositeResponse, bool)
	Put(query string, resp CompositeResponse)
}

// MemoryCache is an unbounded process-lifetime cache. Entries never expire.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]CompositeResponse
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]CompositeResponse)}
}

func (c *MemoryCache) Get(query string) (CompositeResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	resp, ok := c.entries[query]
	return resp, ok
}

func (c *MemoryCache) Put(query string, resp CompositeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[query] = resp
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
