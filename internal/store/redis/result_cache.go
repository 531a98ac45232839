// Package redis caches check reports so repeated lookups of the same value
// skip the matcher while the dataset version is unchanged.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emmi-lili/tx-whisperer/internal/screening"
)

const defaultTTL = 5 * time.Minute

// Cache stores serialized check reports with a TTL. Keys carry the dataset
// version, so a dataset reload naturally invalidates stale verdicts.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache connects to Redis at url. A non-positive ttl falls back to the
// default.
func NewCache(url string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the cached report for key, or (nil, nil) when absent.
func (c *Cache) Get(ctx context.Context, key string) (*screening.Report, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var report screening.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores the report under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, report *screening.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
