package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsKeyPrefix = "leave:stats:"

// StatsKey is the redis hash holding every cached range of a department.
func StatsKey(department string) string {
	return statsKeyPrefix + department
}

func statsField(from, to string) string {
	if from == "" {
		from = "*"
	}
	if to == "" {
		to = "*"
	}
	return from + "|" + to
}

type statsCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// get reports a miss as (nil, nil).
func (c *statsCache) get(ctx context.Context, department, field string) (*DepartmentStats, error) {
	if c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.HGet(ctx, StatsKey(department), field).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var stats DepartmentStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, nil
	}
	return &stats, nil
}

func (c *statsCache) set(ctx context.Context, department, field string, stats DepartmentStats) error {
	if c.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	key := StatsKey(department)
	if err := c.rdb.HSet(ctx, key, field, payload).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, c.ttl).Err()
}

func (c *statsCache) invalidate(ctx context.Context, department string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, StatsKey(department)).Err()
}

// CacheInvalidator drops cached statistics without needing the database.
type CacheInvalidator struct {
	cache statsCache
}

func NewCacheInvalidator(rdb redis.Cmdable) *CacheInvalidator {
	return &CacheInvalidator{cache: statsCache{rdb: rdb}}
}

func (c *CacheInvalidator) InvalidateDepartment(ctx context.Context, department string) error {
	return c.cache.invalidate(ctx, department)
}
