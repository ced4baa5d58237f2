// backend/cache/cache.go
package cache

import (
	"context"
	"log"
	"time"
)

// Cache stores serialized values by key. Implementations never return errors:
// an unavailable backend is logged and behaves like a miss.
// A zero ttl keeps the value until it is deleted or flushed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, key string)
	Flush(ctx context.Context)
}

// Options selects and tunes the cache backend.
type Options struct {
	RedisURL   string
	UseRedis   bool
	MaxEntries int64
}

// New returns a redis-backed cache when redis is enabled and reachable, and an
// in-memory cache otherwise. The in-memory cache also backs redis when redis
// stops answering.
func New(ctx context.Context, opts Options) (Cache, error) {
	memory, err := NewMemoryCache(opts.MaxEntries)
	if err != nil {
		return nil, err
	}

	if opts.RedisURL == "" || !opts.UseRedis {
		log.Println("Cache: Using in-memory cache (redis disabled)")
		return memory, nil
	}

	redisCache, err := NewRedisCache(ctx, opts.RedisURL, memory)
	if err != nil {
		log.Printf("WARN Cache: Redis connection failed, using in-memory cache: %v\n", err)
		return memory, nil
	}
	log.Println("Cache: Redis connected successfully")
	return redisCache, nil
}

// Close releases the connections and goroutines held by c.
func Close(c Cache) {
	switch v := c.(type) {
	case *RedisCache:
		if err := v.Close(); err != nil {
			log.Printf("WARN Cache: Failed to close redis client: %v\n", err)
		}
		Close(v.fallback)
	case *MemoryCache:
		v.Close()
	}
}
