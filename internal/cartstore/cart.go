package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bundle-service/internal/models"
	"bundle-service/internal/redisclient"

	"github.com/google/uuid"
)

// Cart is the storage service bundles are pushed into. It exposes no
// multi-item transactions; callers compensate by removing inserted keys.
type Cart interface {
	// Add inserts a line and returns an opaque item key.
	Add(ctx context.Context, sessionID string, line models.CartLine) (string, error)
	// Remove deletes a previously inserted line.
	Remove(ctx context.Context, sessionID, itemKey string) error
	// Ping reports whether the cart service is reachable.
	Ping(ctx context.Context) error
}

// RedisCart stores each session's cart as a hash of item key to line JSON.
type RedisCart struct {
	redis *redisclient.Client
	ttl   time.Duration
}

// NewRedisCart creates a Redis-backed cart
func NewRedisCart(redis *redisclient.Client, ttl time.Duration) *RedisCart {
	return &RedisCart{redis: redis, ttl: ttl}
}

// Add inserts a cart line and returns its generated item key
func (c *RedisCart) Add(ctx context.Context, sessionID string, line models.CartLine) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("missing session id")
	}
	if line.Quantity < 1 {
		return "", fmt.Errorf("invalid quantity: %d", line.Quantity)
	}

	data, err := json.Marshal(line)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart line: %w", err)
	}

	itemKey := uuid.New().String()
	if err := c.redis.CartSet(ctx, sessionID, itemKey, data, c.ttl); err != nil {
		return "", fmt.Errorf("failed to store cart line: %w", err)
	}

	return itemKey, nil
}

// Remove deletes a cart line by item key
func (c *RedisCart) Remove(ctx context.Context, sessionID, itemKey string) error {
	if err := c.redis.CartRemove(ctx, sessionID, itemKey); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// Ping reports whether the cart backend is reachable
func (c *RedisCart) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx)
}

// Contents returns the current lines of a session's cart
func (c *RedisCart) Contents(ctx context.Context, sessionID string) (map[string]models.CartLine, error) {
	raw, err := c.redis.CartGetAll(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	lines := make(map[string]models.CartLine, len(raw))
	for key, value := range raw {
		var line models.CartLine
		if err := json.Unmarshal([]byte(value), &line); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart line %s: %w", key, err)
		}
		lines[key] = line
	}

	return lines, nil
}
