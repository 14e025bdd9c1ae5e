package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const cachePrefix = "trustscore:"

// Cache stores analyses by statement image reference.
type Cache interface {
	Get(ctx context.Context, imageRef string) (*Analysis, bool, error)
	Set(ctx context.Context, imageRef string, a *Analysis) error
}

// RedisCache keeps analyses in Redis under a hash of the image reference.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey returns the Redis key for an image reference.
func CacheKey(imageRef string) string {
	sum := sha256.Sum256([]byte(imageRef))
	return cachePrefix + hex.EncodeToString(sum[:])
}

func (c *RedisCache) Get(ctx context.Context, imageRef string) (*Analysis, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(imageRef)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, err
	}
	return &a, true, nil
}

func (c *RedisCache) Set(ctx context.Context, imageRef string, a *Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey(imageRef), data, c.ttl).Err()
}

// NopCache never hits. Used when Redis is not configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Analysis, bool, error) { return nil, false, nil }
func (NopCache) Set(context.Context, string, *Analysis) error         { return nil }
