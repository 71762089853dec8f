// Package cache holds the read-through cache for single trail lookups.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/redis/go-redis/v9"
)

// TrailCache caches trails by identifier. Misses return (nil, nil).
type TrailCache interface {
	Get(ctx context.Context, id string) (*models.Trail, error)
	Set(ctx context.Context, trail *models.Trail) error
	Invalidate(ctx context.Context, id string) error
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

type RedisTrailCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTrailCache(client *redis.Client, ttl time.Duration) *RedisTrailCache {
	return &RedisTrailCache{client: client, ttl: ttl}
}

func trailKey(id string) string {
	return "trail:" + id
}

func (c *RedisTrailCache) Get(ctx context.Context, id string) (*models.Trail, error) {
	data, err := c.client.Get(ctx, trailKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var trail models.Trail
	if err := json.Unmarshal(data, &trail); err != nil {
		// unreadable entries are dropped and treated as a miss
		c.client.Del(ctx, trailKey(id))
		return nil, nil
	}
	return &trail, nil
}

func (c *RedisTrailCache) Set(ctx context.Context, trail *models.Trail) error {
	data, err := json.Marshal(trail)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trailKey(trail.ID), data, c.ttl).Err()
}

func (c *RedisTrailCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, trailKey(id)).Err()
}

// NopTrailCache is used when no redis server is configured.
type NopTrailCache struct{}

func (NopTrailCache) Get(context.Context, string) (*models.Trail, error) { return nil, nil }
func (NopTrailCache) Set(context.Context, *models.Trail) error           { return nil }
func (NopTrailCache) Invalidate(context.Context, string) error           { return nil }
