// Package rediscache implements domain.Cache on top of go-redis.
package rediscache

import (
	"context"
	"errors"
	"time"

	"bloomforge/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Cache implements domain.Cache using a Redis client.
type Cache struct {
	client redis.Cmdable
}

// New expects a connected client.
func New(client redis.Cmdable) *Cache {
	return &Cache{client: client}
}

var _ domain.Cache = (*Cache)(nil)

func missOr(err error) error {
	if errors.Is(err, redis.Nil) {
		return domain.ErrCacheMiss
	}
	return err
}

// Get translates redis.Nil to domain.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", missOr(err)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) HGet(ctx context.Context, key, field string) (string, error) {
	val, err := c.client.HGet(ctx, key, field).Result()
	if err != nil {
		return "", missOr(err)
	}
	return val, nil
}

// HGetAll returns ErrCacheMiss for a missing or empty hash.
func (c *Cache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, missOr(err)
	}
	if len(val) == 0 {
		return nil, domain.ErrCacheMiss
	}
	return val, nil
}

func (c *Cache) HSet(ctx context.Context, key string, field string, value string) error {
	return c.client.HSet(ctx, key, field, value).Err()
}

func (c *Cache) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return c.client.HDel(ctx, key, fields...).Err()
}

func (c *Cache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.client.Expire(ctx, key, expiration).Err()
}
