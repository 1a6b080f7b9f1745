package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkim-dev/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const categoryCacheKey = "catalog:categories"

// ErrCacheMiss is returned by CategoryCache.Get when no cached value exists.
var ErrCacheMiss = errors.New("category cache miss")

// CategoryCache stores the catalog category list. The list changes rarely,
// so it is cached with a TTL and rewarmed by the scheduler.
type CategoryCache interface {
	Get(ctx context.Context) ([]string, error)
	Set(ctx context.Context, categories []string) error
}

type categoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCategoryCache(client *redis.Client, ttl time.Duration) CategoryCache {
	return &categoryCache{client: client, ttl: ttl}
}

func (c *categoryCache) Get(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, categoryCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read category cache: %w", err)
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		logger.Warn("Discarding unparseable category cache entry", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, ErrCacheMiss
	}
	return categories, nil
}

func (c *categoryCache) Set(ctx context.Context, categories []string) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	if err := c.client.Set(ctx, categoryCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write category cache: %w", err)
	}

	logger.Debug("Category cache updated", map[string]interface{}{
		"count": len(categories),
		"ttl":   c.ttl.String(),
	})
	return nil
}
