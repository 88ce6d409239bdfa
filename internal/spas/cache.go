package spas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// CachedRepository decorates a Repository with a redis read-through cache on
// GetBySpaID. The widget config endpoint is the hot path: every embedded
// widget load hits it once. Writes invalidate the cached entry so the admin
// dashboard never serves stale config for long.
type CachedRepository struct {
	inner  Repository
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedRepository wraps inner with a redis cache.
func NewCachedRepository(inner Repository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedRepository {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedRepository{inner: inner, redis: client, ttl: ttl, logger: logger}
}

func (c *CachedRepository) key(spaID string) string {
	return fmt.Sprintf("spa:config:%s", spaID)
}

// GetBySpaID serves from redis when possible, falling back to the inner
// repository. Cache failures are logged and degrade to a direct read.
func (c *CachedRepository) GetBySpaID(ctx context.Context, spaID string) (*Spa, error) {
	data, err := c.redis.Get(ctx, c.key(spaID)).Bytes()
	if err == nil {
		var spa Spa
		if err := json.Unmarshal(data, &spa); err == nil {
			spa.Normalize()
			return &spa, nil
		}
		c.logger.Warn("spas cache: corrupt entry, refetching", "spa_id", spaID)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("spas cache: read failed", "error", err, "spa_id", spaID)
	}

	spa, err := c.inner.GetBySpaID(ctx, spaID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(spa); err == nil {
		if err := c.redis.Set(ctx, c.key(spaID), payload, c.ttl).Err(); err != nil {
			c.logger.Warn("spas cache: write failed", "error", err, "spa_id", spaID)
		}
	}
	return spa, nil
}

// Create passes through and primes nothing; the first widget load fills the
// cache.
func (c *CachedRepository) Create(ctx context.Context, spa *Spa) (*Spa, error) {
	return c.inner.Create(ctx, spa)
}

// List always reads through; the admin listing is not a hot path.
func (c *CachedRepository) List(ctx context.Context) ([]*Spa, error) {
	return c.inner.List(ctx)
}

// Update writes through and drops the cached entry.
func (c *CachedRepository) Update(ctx context.Context, spa *Spa) (*Spa, error) {
	updated, err := c.inner.Update(ctx, spa)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, spa.SpaID)
	return updated, nil
}

// Delete writes through and drops the cached entry.
func (c *CachedRepository) Delete(ctx context.Context, spaID string) error {
	if err := c.inner.Delete(ctx, spaID); err != nil {
		return err
	}
	c.invalidate(ctx, spaID)
	return nil
}

// IncrementLeads writes through and drops the cached entry so the counter
// stays roughly current in the dashboard.
func (c *CachedRepository) IncrementLeads(ctx context.Context, spaID string) error {
	if err := c.inner.IncrementLeads(ctx, spaID); err != nil {
		return err
	}
	c.invalidate(ctx, spaID)
	return nil
}

func (c *CachedRepository) invalidate(ctx context.Context, spaID string) {
	if err := c.redis.Del(ctx, c.key(spaID)).Err(); err != nil {
		c.logger.Warn("spas cache: invalidate failed", "error", err, "spa_id", spaID)
	}
}

var _ Repository = (*CachedRepository)(nil)
