package imagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"calcio-stop/internal/model"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "images:"

// RedisCache is a Cache shared between instances, storing JSON values with a TTL.
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// Dial parses redisURL and checks the connection.
func Dial(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

// NewRedisCache creates a cache on top of rdb.
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.Image, bool, error) {
	val, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached images: %w", err)
	}

	var images []model.Image
	if err := json.Unmarshal(val, &images); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached images: %w", err)
	}
	return images, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, images []model.Image) error {
	data, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache images: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached images: %w", err)
	}
	return nil
}
