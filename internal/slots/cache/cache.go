package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lilo/pkg/logger"
	"lilo/pkg/model"
)

const keyPrefix = "slots:"

// SlotCache holds computed slot listings per calendar date. Misses and backend
// failures both read as "not cached"; callers always fall back to recomputing.
type SlotCache interface {
	Get(ctx context.Context, date string) ([]model.Slot, bool)
	Set(ctx context.Context, date string, slots []model.Slot)
	InvalidateDate(ctx context.Context, date string)
	InvalidateAll(ctx context.Context)
}

func Key(date string) string {
	return keyPrefix + date
}

type redisSlotCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisSlotCache(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) SlotCache {
	return &redisSlotCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *redisSlotCache) Get(ctx context.Context, date string) ([]model.Slot, bool) {
	raw, err := c.rdb.Get(ctx, Key(date)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("Slot cache lookup failed", "date", date, "error", err)
		}
		return nil, false
	}

	var slots []model.Slot
	if err := json.Unmarshal(raw, &slots); err != nil {
		c.log.Warn("Discarding corrupt slot cache entry", "date", date, "error", err)
		return nil, false
	}
	return slots, true
}

func (c *redisSlotCache) Set(ctx context.Context, date string, slots []model.Slot) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, Key(date), raw, c.ttl).Err(); err != nil {
		c.log.Warn("Slot cache store failed", "date", date, "error", err)
	}
}

func (c *redisSlotCache) InvalidateDate(ctx context.Context, date string) {
	if err := c.rdb.Del(ctx, Key(date)).Err(); err != nil {
		c.log.Warn("Slot cache invalidation failed", "date", date, "error", err)
	}
}

func (c *redisSlotCache) InvalidateAll(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("Slot cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("Slot cache flush failed", "keys", len(keys), "error", err)
		return
	}
	c.log.Debug("Slot cache flushed", "keys", len(keys))
}

type noopSlotCache struct{}

// NewNoopSlotCache is used when no Redis address is configured.
func NewNoopSlotCache() SlotCache {
	return noopSlotCache{}
}

func (noopSlotCache) Get(context.Context, string) ([]model.Slot, bool) { return nil, false }
func (noopSlotCache) Set(context.Context, string, []model.Slot)        {}
func (noopSlotCache) InvalidateDate(context.Context, string)           {}
func (noopSlotCache) InvalidateAll(context.Context)                    {}

// New picks the Redis cache when a client is available.
func New(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) SlotCache {
	if rdb == nil {
		return NewNoopSlotCache()
	}
	return NewRedisSlotCache(rdb, ttl, log)
}
