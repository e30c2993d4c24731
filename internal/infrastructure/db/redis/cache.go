package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/negocehub/marketplace-api/internal/core/domain"
)

const (
	catalogKey = "catalog:all"
	catalogTTL = 30 * time.Second
)

// ProductCache caches the public catalog listing in Redis.
// The TTL is short: the cache only absorbs read bursts on the buyer view, and
// any product mutation invalidates it immediately.
type ProductCache struct {
	client *redis.Client
}

// NewProductCache creates a ProductCache wrapping the given Redis client.
func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

// GetAll returns the cached listing, or (nil, nil) on a miss.
func (c *ProductCache) GetAll(ctx context.Context) ([]domain.Product, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog cache get: %w", err)
	}

	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("catalog cache decode: %w", err)
	}
	return products, nil
}

// SetAll stores the listing (expires after catalogTTL).
func (c *ProductCache) SetAll(ctx context.Context, products []domain.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	return c.client.Set(ctx, catalogKey, raw, catalogTTL).Err()
}

// Invalidate drops the cached listing.
func (c *ProductCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, catalogKey).Err()
}
