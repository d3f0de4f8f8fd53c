package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/pkg/cache"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	schedulePrefix = "production:schedule:"
	// epochKey sits outside schedulePrefix so pattern deletes keep it.
	epochKey = "production:schedule-epoch"
)

// ErrStaleSchedule reports a cache write skipped because the schedule
// changed after the value was read.
var ErrStaleSchedule = errors.New("schedule changed while reading")

// ScheduleRangeKey is the cache key of an inclusive schedule range.
func ScheduleRangeKey(start, end time.Time) string {
	return fmt.Sprintf("%srange:%s:%s", schedulePrefix, model.FormatDay(start), model.FormatDay(end))
}

// InvalidateSchedules bumps the schedule epoch, then drops every cached
// schedule. A nil client is a no-op. Failures are logged only; entries
// expire on their own.
func InvalidateSchedules(ctx context.Context, c *cache.RedisClient, log logger.ZapLogger) {
	if c == nil {
		return
	}
	if err := c.Client.Incr(ctx, epochKey).Err(); err != nil {
		log.Warn("failed to bump schedule epoch", zap.Error(err))
	}
	if err := c.DeletePattern(ctx, schedulePrefix+"*"); err != nil {
		log.Warn("failed to invalidate schedule cache", zap.Error(err))
	}
}

// ScheduleCache is the Redis-backed schedule query cache.
type ScheduleCache struct {
	client *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewScheduleCache(client *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *ScheduleCache {
	return &ScheduleCache{client: client, ttl: ttl, logger: log.With(zap.String("component", "schedule-cache"))}
}

func (c *ScheduleCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Epoch returns the number of invalidations so far.
func (c *ScheduleCache) Epoch(ctx context.Context) (int64, error) {
	n, err := c.client.Client.Get(ctx, epochKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// SetIfCurrent stores value only while the epoch still equals epoch.
// The epoch key is watched so an invalidation racing the write aborts it.
func (c *ScheduleCache) SetIfCurrent(ctx context.Context, key string, epoch int64, value []byte) error {
	err := c.client.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, epochKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != epoch {
			return ErrStaleSchedule
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, c.ttl)
			return nil
		})
		return err
	}, epochKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStaleSchedule
	}
	return err
}

func (c *ScheduleCache) Invalidate(ctx context.Context) {
	InvalidateSchedules(ctx, c.client, c.logger)
}
