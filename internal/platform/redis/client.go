// Package redis connects the process to Redis. The only Redis consumer here
// is the owner lease locker, so the pool is sized for many short SET NX
// round-trips rather than large pipelines, and a failed startup ping is
// fatal: a locker that silently cannot reach Redis would let replicas run
// unserialized.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tagdex/internal/platform/config"
)

// Client wraps the go-redis client so callers depend on this package, not on
// the driver directly.
type Client struct {
	*redis.Client
}

// New connects using the provided configuration and verifies the connection
// with a bounded ping. Returns nil when no URL is configured; the caller
// falls back to the in-process locker.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
