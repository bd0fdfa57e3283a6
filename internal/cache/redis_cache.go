package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/utils"
)

const testCatalogKey = "quiz:catalog:tests"

// TestCatalogCache keeps the test catalog in Redis between admin edits.
// Availability statuses are never cached; they are derived per request.
type TestCatalogCache struct {
	client *redis.Client
	logger utils.Logger
	ttl    time.Duration
}

func NewTestCatalogCache(client *redis.Client, logger utils.Logger, ttl time.Duration) *TestCatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TestCatalogCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func (c *TestCatalogCache) GetTests(ctx context.Context) ([]*models.Test, bool) {
	payload, err := c.client.Get(ctx, testCatalogKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Catalog cache read failed", "error", err)
		}
		return nil, false
	}

	var tests []*models.Test
	if err := json.Unmarshal(payload, &tests); err != nil {
		c.logger.Warn("Catalog cache entry is malformed, dropping it", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return tests, true
}

func (c *TestCatalogCache) SetTests(ctx context.Context, tests []*models.Test) {
	payload, err := json.Marshal(tests)
	if err != nil {
		c.logger.Warn("Failed to encode catalog for cache", "error", err)
		return
	}
	if err := c.client.Set(ctx, testCatalogKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Catalog cache write failed", "error", err)
	}
}

func (c *TestCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, testCatalogKey).Err(); err != nil {
		c.logger.Warn("Catalog cache invalidation failed", "error", err)
	}
}
