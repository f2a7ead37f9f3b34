package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache implements RatingCache on a Redis backend.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the given address and verifies the connection.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func avgKey(bookID int64) string {
	return fmt.Sprintf("book:%d:avg_rating", bookID)
}

func (c *RedisCache) GetAverage(ctx context.Context, bookID int64) (float64, bool, error) {
	val, err := c.client.Get(ctx, avgKey(bookID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get error: %w", err)
	}

	avg, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// unreadable entry, treat as a miss so the caller recomputes
		return 0, false, nil
	}
	return avg, true, nil
}

func (c *RedisCache) SetAverage(ctx context.Context, bookID int64, avg float64, ttl time.Duration) error {
	val := strconv.FormatFloat(avg, 'f', -1, 64)
	if err := c.client.Set(ctx, avgKey(bookID), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (c *RedisCache) InvalidateAverage(ctx context.Context, bookID int64) error {
	if err := c.client.Del(ctx, avgKey(bookID)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
