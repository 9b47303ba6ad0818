package redis

import (
	"context"
	"time"

	"github.com/turtacn/GraphSentinel/internal/application/analysis"
)

// resultCache adapts Cache to the analysis.ResultCache port.
type resultCache struct {
	cache Cache
}

var _ analysis.ResultCache = (*resultCache)(nil)

// NewResultCache wraps a Cache for per-entity analysis results.
func NewResultCache(cache Cache) analysis.ResultCache {
	return &resultCache{cache: cache}
}

func resultKey(entityID string) string {
	return "analysis:" + entityID
}

func (c *resultCache) Get(ctx context.Context, entityID string) (*analysis.Result, error) {
	var res analysis.Result
	err := c.cache.Get(ctx, resultKey(entityID), &res)
	if err == ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *resultCache) Set(ctx context.Context, entityID string, res *analysis.Result, ttl time.Duration) error {
	return c.cache.Set(ctx, resultKey(entityID), res, ttl)
}
