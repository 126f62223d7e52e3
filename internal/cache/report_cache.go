package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultReportTTL = 15 * time.Minute

// ReportCache keeps rendered audit reports in Redis.
// A cache with a nil client is valid and caches nothing.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache parses a redis:// URL and checks the connection.
// When Redis is unreachable the cache degrades to no caching.
func NewReportCache(redisURL string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewReportCacheWithClient(nil, ttl), fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewReportCacheWithClient(client, ttl), nil
}

func NewReportCacheWithClient(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis connection backs the cache
func (c *ReportCache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *ReportCache) cacheKey(runID uuid.UUID, format string) string {
	return fmt.Sprintf("import-report:%s:%s", runID.String(), format)
}

// Get returns the cached report bytes, or nil on a miss
func (c *ReportCache) Get(ctx context.Context, runID uuid.UUID, format string) ([]byte, error) {
	if !c.Enabled() {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.cacheKey(runID, format)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *ReportCache) Set(ctx context.Context, runID uuid.UUID, format string, data []byte) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Set(ctx, c.cacheKey(runID, format), data, c.ttl).Err()
}

func (c *ReportCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
