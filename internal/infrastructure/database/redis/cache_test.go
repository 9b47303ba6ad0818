package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
)

func TestNewCache_DefaultsAndOptions(t *testing.T) {
	c := NewCache(nil, logging.NewNopLogger()).(*redisCache)
	assert.Equal(t, "graphsentinel:", c.prefix)
	assert.Equal(t, 5*time.Minute, c.defaultTTL)
	assert.Equal(t, 30*time.Second, c.nullCacheTTL)

	c = NewCache(nil, logging.NewNopLogger(),
		WithPrefix("sentinel:"),
		WithDefaultTTL(time.Minute),
		WithNullCacheTTL(10*time.Second),
	).(*redisCache)
	assert.Equal(t, "sentinel:", c.prefix)
	assert.Equal(t, time.Minute, c.defaultTTL)
	assert.Equal(t, 10*time.Second, c.nullCacheTTL)
}

func TestRedisCache_FullKey(t *testing.T) {
	c := &redisCache{prefix: "graphsentinel:"}

	assert.Equal(t, "graphsentinel:analysis:ACME-001", c.fullKey("analysis:ACME-001"))
}

func TestRedisCache_JitterTTL_WithinTenPercent(t *testing.T) {
	c := &redisCache{}
	ttl := 10 * time.Minute

	for i := 0; i < 100; i++ {
		j := c.jitterTTL(ttl)
		assert.GreaterOrEqual(t, j, 9*time.Minute)
		assert.LessOrEqual(t, j, 11*time.Minute)
	}
}

func TestRedisCache_JitterTTL_ZeroMeansNoExpiry(t *testing.T) {
	c := &redisCache{}

	assert.Equal(t, time.Duration(0), c.jitterTTL(0))
}
