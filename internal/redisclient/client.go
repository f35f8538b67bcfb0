package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"griffe-orders/internal/models"

	"github.com/go-redis/redis/v8"
)

const productKeyPrefix = "catalog:product:"

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client for the catalog cache
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
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

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetProduct caches a catalog product with the configured TTL
func (c *Client) SetProduct(ctx context.Context, p *models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", p.Code, err)
	}
	return c.rdb.Set(ctx, productKeyPrefix+p.Code, data, c.ttl).Err()
}

// GetProduct retrieves a cached product. Returns redis.Nil on a cache miss.
func (c *Client) GetProduct(ctx context.Context, code string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKeyPrefix+code).Bytes()
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product %s: %w", code, err)
	}
	return &p, nil
}

// SetProducts caches a batch of products in one pipeline
func (c *Client) SetProducts(ctx context.Context, products []models.Product) error {
	pipe := c.rdb.Pipeline()
	for i := range products {
		data, err := json.Marshal(&products[i])
		if err != nil {
			return fmt.Errorf("failed to marshal product %s: %w", products[i].Code, err)
		}
		pipe.Set(ctx, productKeyPrefix+products[i].Code, data, c.ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateProduct drops a product from the cache (used by import tooling
// after a catalog write)
func (c *Client) InvalidateProduct(ctx context.Context, code string) error {
	return c.rdb.Del(ctx, productKeyPrefix+code).Err()
}

// IsCacheMiss reports whether err is a plain cache miss
func IsCacheMiss(err error) bool {
	return err == redis.Nil
}
