package cache

import (
	"context"
	"time"

	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds the number of entries held by a MemoryCache
const DefaultSize = 64

// MemoryCache is a thread-safe in-memory LRU cache whose entries expire
// after a fixed TTL
type MemoryCache struct {
	lru *expirable.LRU[string, interface{}]
}

// NewMemoryCache creates a cache holding at most size entries for ttl each.
// A non-positive size uses DefaultSize.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = DefaultSize
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, interface{}](size, nil, ttl),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

// Set stores a value in the cache
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}) error {
	c.lru.Add(key, value)
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.lru.Peek(key)
	return ok, nil
}

// Size returns the current number of items in the cache
func (c *MemoryCache) Size() int {
	return c.lru.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.lru.Purge()
}
