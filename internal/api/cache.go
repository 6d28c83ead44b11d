package api

import (
	"sync"

	"github.com/lakerisk/lakerisk/pkg/importance"
)

// ImportanceCache is a thread-safe LRU cache for computed importance results.
// Global analyses depend only on the variant, and condition analyses only on
// species, reading and variant, so results can be reused across requests.
type ImportanceCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*importance.Result
	order   []string // oldest first
}

// NewImportanceCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 64.
func NewImportanceCache(maxSize int) *ImportanceCache {
	if maxSize <= 0 {
		maxSize = 64
	}
	return &ImportanceCache{
		maxSize: maxSize,
		entries: make(map[string]*importance.Result),
	}
}

// Get retrieves a result from the cache, or nil if not found.
func (c *ImportanceCache) Get(key string) *importance.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, ok := c.entries[key]
	if !ok {
		return nil
	}

	c.moveToEnd(key)
	return res
}

// Put adds a result to the cache, evicting the oldest if full.
func (c *ImportanceCache) Put(key string, res *importance.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = res
		c.moveToEnd(key)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = res
	c.order = append(c.order, key)
}

// Len returns the number of cached results.
func (c *ImportanceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ImportanceCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
