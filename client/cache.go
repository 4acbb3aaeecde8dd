// Package client is the device-side progression core: an injectable
// optimistic store around the pure reducer, a local cache, the
// server-reconciliation orchestrator and the ad-gating policy. It has
// no UI; the mobile shell drives it from event handlers.
package client

import (
	"context"
	"errors"
	"sync"
)

// ErrCacheMiss is returned by Get when the key has never been written.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the per-user key-value snapshot store. Implementations must
// tolerate torn or garbage values: readers fall back to defaults on
// parse failure, so Get should return whatever bytes are there.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryCache is a process-local Cache for tests and previews.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	c.data[key] = v
	return nil
}
