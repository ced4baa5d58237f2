// backend/cache/memory.go
package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/ristretto"
)

const defaultMaxEntries = 10000

// MemoryCache is an in-process cache on top of ristretto. Each entry costs 1,
// so MaxCost is the number of entries kept.
type MemoryCache struct {
	store *ristretto.Cache
}

// NewMemoryCache creates an in-memory cache holding up to maxEntries values.
func NewMemoryCache(maxEntries int64) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxEntries * 10, // number of keys to track frequency of
		MaxCost:            maxEntries,
		BufferItems:        64, // number of keys per Get buffer
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory cache: %w", err)
	}
	return &MemoryCache{store: store}, nil
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	data, ok := value.([]byte)
	return data, ok
}

// Set implements Cache. Ristretto may drop a write under contention or
// admission pressure; dropped writes are logged and Get reports a miss.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	stored := make([]byte, len(value))
	copy(stored, value)
	if !c.store.SetWithTTL(key, stored, 1, ttl) {
		log.Printf("WARN Cache: in-memory SET %s was dropped\n", key)
		return
	}
	c.store.Wait()
}

// Del implements Cache.
func (c *MemoryCache) Del(_ context.Context, key string) {
	c.store.Del(key)
}

// Flush implements Cache.
func (c *MemoryCache) Flush(_ context.Context) {
	c.store.Clear()
}

// Close stops ristretto's background goroutines.
func (c *MemoryCache) Close() {
	c.store.Close()
}
