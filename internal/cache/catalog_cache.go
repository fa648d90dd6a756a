package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/domain"
)

const (
	productKeyPrefix = "storefront:product:"
	categoriesKey    = "storefront:categories"
)

// CatalogCache stores product and category lookups in Redis. Failures are
// logged and reported as misses so the database stays the source of truth.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache returns nil when caching is disabled.
func NewCatalogCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &CatalogCache{client: client, ttl: ttl, logger: logger}
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

// Product returns a cached product.
func (c *CatalogCache) Product(ctx context.Context, id int64) (*domain.Product, bool) {
	var product domain.Product
	if !c.get(ctx, productKey(id), &product) {
		return nil, false
	}
	return &product, true
}

// StoreProduct caches a product.
func (c *CatalogCache) StoreProduct(ctx context.Context, product *domain.Product) {
	if product == nil {
		return
	}
	c.set(ctx, productKey(product.ID), product)
}

// Categories returns the cached category list.
func (c *CatalogCache) Categories(ctx context.Context) ([]domain.Category, bool) {
	var categories []domain.Category
	if !c.get(ctx, categoriesKey, &categories) {
		return nil, false
	}
	return categories, true
}

// StoreCategories caches the category list.
func (c *CatalogCache) StoreCategories(ctx context.Context, categories []domain.Category) {
	c.set(ctx, categoriesKey, categories)
}

func (c *CatalogCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
