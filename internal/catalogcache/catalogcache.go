// Package catalogcache caches resolved status catalogs in Redis. The cache
// is optional: a nil *Cache is valid and makes every operation a no-op, so
// callers never branch on whether Redis is configured.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snakayama/kadai/internal/models"
)

// TTL bounds staleness for readers that race a failed invalidation.
const TTL = 5 * time.Minute

// Cache wraps a Redis client with catalog-specific accessors.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at url and verifies the connection. An empty url
// returns a nil cache, which disables caching.
func New(ctx context.Context, url string) (*Cache, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("catalogcache: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("catalogcache: ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// key namespaces catalog entries per project.
func key(projectID string) string {
	return "kadai:catalog:" + projectID
}

// Get returns the cached catalog for a project, or ok=false on a miss,
// a disabled cache, or any Redis failure. Failures never propagate: a
// cache miss is always a safe answer.
func (c *Cache) Get(ctx context.Context, projectID string) ([]models.TaskStatus, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key(projectID)).Bytes()
	if err != nil {
		return nil, false
	}
	var catalog []models.TaskStatus
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, false
	}
	return catalog, true
}

// Set stores a resolved catalog. Failures are dropped for the same reason
// Get's are.
func (c *Cache) Set(ctx context.Context, projectID string, catalog []models.TaskStatus) {
	if c == nil {
		return
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(projectID), data, TTL)
}

// Invalidate drops a project's cached catalog. Mutation handlers call this
// before reporting success so no later read observes a stale catalog.
func (c *Cache) Invalidate(ctx context.Context, projectID string) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(projectID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("catalogcache: invalidate project %s: %w", projectID, err)
	}
	return nil
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
