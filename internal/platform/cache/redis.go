package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/investpro/ledger/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key is not present
var ErrCacheMiss = errors.New("cache miss")

// Cache is a thin read-through cache over Redis. It is never authoritative:
// every value it holds can be rebuilt from the write side, and callers must
// treat a miss or a Redis outage as "go to the database".
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis")

	return &Cache{
		client: client,
		ttl:    cfg.CacheTTL,
		logger: logger,
	}, nil
}

// NewCacheWithClient wraps an existing client. Used by tests.
func NewCacheWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func balanceKey(walletID string) string {
	return "wallet:balance:" + walletID
}

// GetBalance returns the cached balance for a wallet, or ErrCacheMiss
func (c *Cache) GetBalance(ctx context.Context, walletID string) (int64, error) {
	val, err := c.client.Get(ctx, balanceKey(walletID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Corrupt entry; drop it so the next read repopulates
		c.client.Del(ctx, balanceKey(walletID))
		return 0, ErrCacheMiss
	}
	return balance, nil
}

func (c *Cache) SetBalance(ctx context.Context, walletID string, balance int64) error {
	return c.client.Set(ctx, balanceKey(walletID), strconv.FormatInt(balance, 10), c.ttl).Err()
}

// InvalidateBalance drops the cached balance after a committed mutation.
// Failures are logged, not returned: the entry expires on its own and the
// ledger commit must not be reported as failed over a cache error.
func (c *Cache) InvalidateBalance(ctx context.Context, walletID string) {
	if err := c.client.Del(ctx, balanceKey(walletID)).Err(); err != nil {
		c.logger.Warn("failed to invalidate balance cache", "wallet_id", walletID, "error", err)
	}
}

// GetJSON unmarshals the cached value at key into dest, or returns ErrCacheMiss
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// SetJSON stores the JSON encoding of value at key with the configured TTL
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
