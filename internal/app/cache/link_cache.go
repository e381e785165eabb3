package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "golink:"

	// notFoundSentinel is an explicit negative-cache marker. An empty string
	// would be indistinguishable from a cache miss.
	notFoundSentinel = "__nil__"
)

// Entry is a cached lookup result. Negative entries record that the
// shortlink is known to have no stored long value.
type Entry struct {
	LongValue string
	Negative  bool
}

// LinkCache is a redis-backed cache-aside layer in front of the link
// repository. Positive and negative results carry separate TTLs so deleted
// links do not read as missing for a full hour.
type LinkCache struct {
	client      *redis.Client
	ttl         time.Duration
	negativeTTL time.Duration
}

// NewLinkCache builds a LinkCache with the given TTLs. Zero TTLs fall back
// to one hour for hits and thirty seconds for negative entries.
func NewLinkCache(client *redis.Client, ttl, negativeTTL time.Duration) *LinkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if negativeTTL <= 0 {
		negativeTTL = 30 * time.Second
	}
	return &LinkCache{
		client:      client,
		ttl:         ttl,
		negativeTTL: negativeTTL,
	}
}

// Get returns the cached entry for short, or nil on a cache miss.
func (c *LinkCache) Get(ctx context.Context, short string) (*Entry, error) {
	res, err := c.client.Get(ctx, keyPrefix+short).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if res == notFoundSentinel {
		return &Entry{Negative: true}, nil
	}
	return &Entry{LongValue: res}, nil
}

// Set caches the long value stored for short.
func (c *LinkCache) Set(ctx context.Context, short, longValue string) error {
	return c.client.Set(ctx, keyPrefix+short, longValue, c.ttl).Err()
}

// SetNotFound records a short-lived negative entry for short.
func (c *LinkCache) SetNotFound(ctx context.Context, short string) error {
	return c.client.Set(ctx, keyPrefix+short, notFoundSentinel, c.negativeTTL).Err()
}

// Delete drops any cached entry for short. Called on every write so the
// next lookup reloads from the repository.
func (c *LinkCache) Delete(ctx context.Context, short string) error {
	return c.client.Del(ctx, keyPrefix+short).Err()
}
