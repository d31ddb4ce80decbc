package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping reports whether the connection is alive
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// CartSet stores a cart line under the given item key
func (c *Client) CartSet(ctx context.Context, sessionID, itemKey string, line []byte, ttl time.Duration) error {
	key := cartKey(sessionID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, itemKey, line)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// CartRemove deletes a cart line by item key
func (c *Client) CartRemove(ctx context.Context, sessionID, itemKey string) error {
	return c.rdb.HDel(ctx, cartKey(sessionID), itemKey).Err()
}

// CartGetAll returns all cart lines for a session keyed by item key
func (c *Client) CartGetAll(ctx context.Context, sessionID string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, cartKey(sessionID)).Result()
}

// CartSize returns the number of lines in a session's cart
func (c *Client) CartSize(ctx context.Context, sessionID string) (int64, error) {
	return c.rdb.HLen(ctx, cartKey(sessionID)).Result()
}

// SetSessionToken stores the anti-forgery token for a session
func (c *Client) SetSessionToken(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, sessionKey(sessionID), token, ttl).Err()
}

// GetSessionToken retrieves the anti-forgery token for a session.
// Returns empty string when no token is stored.
func (c *Client) GetSessionToken(ctx context.Context, sessionID string) (string, error) {
	token, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// SetCatalogPayload caches the assembled catalog payload
func (c *Client) SetCatalogPayload(ctx context.Context, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, "catalog:payload", payload, ttl).Err()
}

// GetCatalogPayload returns the cached catalog payload, or nil on a miss
func (c *Client) GetCatalogPayload(ctx context.Context) ([]byte, error) {
	payload, err := c.rdb.Get(ctx, "catalog:payload").Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// IncrProductPopularity bumps the bundle-popularity counter for a product
func (c *Client) IncrProductPopularity(ctx context.Context, productID int64, delta int) error {
	return c.rdb.IncrBy(ctx, fmt.Sprintf("popular:%d", productID), int64(delta)).Err()
}

// GetProductPopularity returns the bundle-popularity counter for a product
func (c *Client) GetProductPopularity(ctx context.Context, productID int64) (int64, error) {
	count, err := c.rdb.Get(ctx, fmt.Sprintf("popular:%d", productID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
