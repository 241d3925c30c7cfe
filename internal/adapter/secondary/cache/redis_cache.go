package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cashflow/geidea-payments/internal/core"
	"github.com/cashflow/geidea-payments/internal/port/output"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a resolved payment stays cached
const DefaultTTL = 24 * time.Hour

// RedisCache provides caching functionality using Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ output.PaymentCache = (*RedisCache)(nil)

// NewRedisCache creates a new Redis cache client
func NewRedisCache(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established")
	return NewRedisCacheFromClient(client, DefaultTTL, logger), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func paymentKey(ownerID string, paymentID uuid.UUID) string {
	return fmt.Sprintf("payment:%s:%s", ownerID, paymentID)
}

// Get returns the cached payment or output.ErrCacheMiss
func (c *RedisCache) Get(ctx context.Context, ownerID string, paymentID uuid.UUID) (*core.Payment, error) {
	data, err := c.client.Get(ctx, paymentKey(ownerID, paymentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, output.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var p core.Payment
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable cache entry", "payment_id", paymentID, "err", err)
		_ = c.client.Del(ctx, paymentKey(ownerID, paymentID)).Err()
		return nil, output.ErrCacheMiss
	}
	return &p, nil
}

// Set stores a payment. PENDING payments are skipped, they still change.
func (c *RedisCache) Set(ctx context.Context, payment *core.Payment) error {
	if !payment.IsTerminal() {
		return nil
	}
	data, err := json.Marshal(payment)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, paymentKey(payment.OwnerID, payment.ID), data, c.ttl).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
