package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/redis/go-redis/v9"
)

const dayScope = "day"

// Availability caches computed availability tiers in Redis so calendar
// rendering does not re-run the estimator for every cell. A nil cache is a
// valid no-op: every lookup misses.
type Availability struct {
	redis  *redis.Client
	ttl    time.Duration
	logger apt.Logger
}

// NewClient connects to Redis. The url accepts both redis:// URLs and plain
// host:port addresses.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to Redis: %w", err)
	}

	return client, nil
}

func NewAvailability(client *redis.Client, ttl time.Duration, logger apt.Logger) *Availability {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Availability{
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached tier for a date/slot and whether it was present.
func (c *Availability) Get(ctx context.Context, date, slot string) (string, bool) {
	if c == nil || c.redis == nil {
		return "", false
	}

	tier, err := c.redis.Get(ctx, key(date, slot)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Debug("availability cache read failed", "error", err)
		return "", false
	}
	return tier, true
}

// Set stores the tier with the configured TTL. Failures are logged, never
// propagated: the cache is an optimization, not a dependency.
func (c *Availability) Set(ctx context.Context, date, slot, tier string) {
	if c == nil || c.redis == nil {
		return
	}

	if err := c.redis.Set(ctx, key(date, slot), tier, c.ttl).Err(); err != nil {
		c.logger.Debug("availability cache write failed", "error", err)
	}
}

// InvalidateDate drops every cached slot of a date, called when a booking on
// that date changes.
func (c *Availability) InvalidateDate(ctx context.Context, date string) error {
	if c == nil || c.redis == nil {
		return nil
	}

	keys, err := c.redis.Keys(ctx, fmt.Sprintf("availability:%s:*", date)).Result()
	if err != nil {
		return fmt.Errorf("cannot list availability keys for %s: %w", date, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cannot invalidate availability for %s: %w", date, err)
	}
	return nil
}

func (c *Availability) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func key(date, slot string) string {
	if slot == "" {
		slot = dayScope
	}
	return fmt.Sprintf("availability:%s:%s", date, slot)
}
