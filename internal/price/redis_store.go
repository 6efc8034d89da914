// internal/price/redis_store.go
package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisConfig holds connection parameters for the Redis price cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements Store with plain string keys "price:{mint}".
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and pings it to verify connectivity.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return NewRedisStoreFromClient(rdb), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func priceKey(mint string) string {
	return "price:" + mint
}

// Get returns the cached price. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, mint string) (decimal.Decimal, bool, error) {
	val, err := s.rdb.Get(ctx, priceKey(mint)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis: get price %s: %w", mint, err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis: parse price %s: %w", mint, err)
	}
	return price, true, nil
}

// Set stores the price with the given TTL.
func (s *RedisStore) Set(ctx context.Context, mint string, price decimal.Decimal, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, priceKey(mint), price.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", mint, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)
