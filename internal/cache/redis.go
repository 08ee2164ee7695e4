package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	productKeyPrefix = "store:product:"
	productTTL       = 5 * time.Minute
)

// ProductCache is a read-through cache for single-product lookups. All
// methods are safe on a nil receiver, which is how a deployment without
// Redis runs.
type ProductCache struct {
	client *redis.Client
}

// NewProductCache connects to Redis when a URL is configured. An empty URL
// returns a nil cache.
func NewProductCache(url string) (*ProductCache, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("Successfully connected to Redis for the product cache.")
	return &ProductCache{client: client}, nil
}

// Get returns the cached product, or nil on a miss.
func (c *ProductCache) Get(ctx context.Context, id string) (*domain.Product, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product cache: %w", err)
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}

	return &product, nil
}

func (c *ProductCache) Set(ctx context.Context, product *domain.Product) error {
	if c == nil || product == nil {
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product for cache: %w", err)
	}

	if err := c.client.Set(ctx, productKeyPrefix+product.ID, data, productTTL).Err(); err != nil {
		return fmt.Errorf("failed to write product cache: %w", err)
	}
	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if c == nil {
		return nil
	}

	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}

// Ping reports cache connectivity for readiness checks.
func (c *ProductCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
