package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// Client is a JSON cache over Redis. A nil *Client is valid and behaves as
// an always-empty cache, so callers do not need to check whether Redis is
// configured.
type Client struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewClient(redisURL string, ttl time.Duration) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	log.Println("Redis connected")
	return &Client{Redis: client, TTL: ttl}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.Redis.Close()
}

// GetJSON decodes the value at key into dst or returns ErrMiss.
func (c *Client) GetJSON(ctx context.Context, key string, dst interface{}) error {
	if c == nil {
		return ErrMiss
	}
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.Redis.Set(ctx, key, raw, c.TTL).Err()
}

// DeletePattern deletes all keys matching a pattern, using SCAN rather than
// KEYS.
func (c *Client) DeletePattern(ctx context.Context, pattern string) error {
	if c == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := c.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Remember returns the cached value at key, or calls load, caches its result
// and returns it. Cache errors fall through to load.
func Remember[T any](ctx context.Context, c *Client, key string, load func() (T, error)) (T, error) {
	var cached T
	err := c.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrMiss) {
		log.Printf("cache read failed for %s: %v", key, err)
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := c.SetJSON(ctx, key, value); err != nil {
		log.Printf("cache write failed for %s: %v", key, err)
	}
	return value, nil
}
