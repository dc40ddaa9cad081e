package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// CachedResolver keeps resolved scenarios in Redis as JSON. Redis failures
// are logged and the backing resolver answers instead.
type CachedResolver struct {
	next Resolver
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedResolver wraps next with a Redis cache.
func NewCachedResolver(next Resolver, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedResolver {
	return &CachedResolver{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "scenario_cache").Logger(),
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, category, name string) (*model.Scenario, error) {
	key := config.CacheKey.ScenarioKey(category, name)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var s model.Scenario
		if err := json.Unmarshal(data, &s); err == nil {
			return &s, nil
		}
		c.log.Warn().Str("key", key).Msg("Corrupt scenario cache entry, reloading")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("Scenario cache read failed")
	}

	s, err := c.next.Resolve(ctx, category, name)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(s); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Scenario cache write failed")
		}
	}
	return s, nil
}

func (c *CachedResolver) List(ctx context.Context) ([]model.ScenarioListItem, error) {
	key := config.CacheKey.ScenarioCatalogKey()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var items []model.ScenarioListItem
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", key).Msg("Scenario catalog cache read failed")
	}

	items, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Scenario catalog cache write failed")
		}
	}
	return items, nil
}

// Invalidate drops the cached copy of one scenario and the catalog listing.
func (c *CachedResolver) Invalidate(ctx context.Context, category, name string) error {
	return c.rdb.Del(ctx,
		config.CacheKey.ScenarioKey(category, name),
		config.CacheKey.ScenarioCatalogKey(),
	).Err()
}
