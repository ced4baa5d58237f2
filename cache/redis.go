// backend/cache/redis.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// RedisCache stores values in redis. When a redis call fails the operation is
// served by the in-memory fallback instead.
type RedisCache struct {
	client   *redis.Client
	fallback Cache
}

// NewRedisCache connects to redisURL and verifies the connection with PING.
func NewRedisCache(ctx context.Context, redisURL string, fallback Cache) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisCache{client: client, fallback: fallback}, nil
}

// Get implements Cache. A redis miss still consults the in-memory fallback,
// which holds values written while redis was unreachable.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		if c.fallback == nil {
			return nil, false
		}
		return c.fallback.Get(ctx, key)
	}
	if err != nil {
		log.Printf("ERROR Cache: redis GET %s failed, reading in-memory cache: %v\n", key, err)
		if c.fallback == nil {
			return nil, false
		}
		return c.fallback.Get(ctx, key)
	}
	return data, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("ERROR Cache: redis SET %s failed, writing in-memory cache: %v\n", key, err)
		if c.fallback != nil {
			c.fallback.Set(ctx, key, value, ttl)
		}
	}
}

// Del implements Cache.
func (c *RedisCache) Del(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("ERROR Cache: redis DEL %s failed: %v\n", key, err)
	}
	if c.fallback != nil {
		c.fallback.Del(ctx, key)
	}
}

// Flush implements Cache. It clears the current redis database.
func (c *RedisCache) Flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	if err := c.client.FlushDB(ctx).Err(); err != nil {
		log.Printf("ERROR Cache: redis FLUSHDB failed: %v\n", err)
	}
	if c.fallback != nil {
		c.fallback.Flush(ctx)
	}
}

// Close closes the redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
