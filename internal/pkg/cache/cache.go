package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

// ErrMiss is returned by Get when the key does not exist.
var ErrMiss = errors.New("cache miss")

// Cache is a thin key/value wrapper around a Redis (or Dragonfly) client.
type Cache struct {
	client *redis.Client
}

// Setup connects to the configured cache server. An unreachable server is
// logged and the client is returned anyway; go-redis reconnects on use.
func Setup(ctx context.Context, cfg config.Cache) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Warnw("could not connect to cache", "addr", client.Options().Addr, "error", err)
	} else {
		log.Infow("connected to cache", "addr", client.Options().Addr, "reply", pong)
	}
	return New(client)
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Client returns the Redis client instance
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Set stores a value in the cache with the given key and expiration time
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

// Delete removes a value from the cache by key
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
