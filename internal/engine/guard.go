// Package engine serializes the planning operations (consolidate, reset,
// generate) so their commits never interleave.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lockKey = "lock:production-engine"

// Locker is a cross-process lock. *cache.RedisClient implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

// Guard runs one planning operation at a time. Within a process it uses a
// mutex; across processes it takes a single-attempt distributed lock when a
// Locker is configured. A busy lock is reported as a conflict, never retried.
type Guard struct {
	mu     sync.Mutex
	locker Locker
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewGuard(locker Locker, ttl time.Duration, log logger.ZapLogger) *Guard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Guard{locker: locker, ttl: ttl, logger: log}
}

func (g *Guard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locker == nil {
		return fn(ctx)
	}

	token := uuid.New().String()
	ok, err := g.locker.AcquireLock(ctx, lockKey, token, g.ttl)
	if err != nil {
		g.logger.Error("failed to acquire engine lock", zap.String("op", op), zap.Error(err))
		return err
	}
	if !ok {
		return apperror.Conflict("another planning operation is in progress")
	}
	defer func() {
		if err := g.locker.ReleaseLock(context.Background(), lockKey, token); err != nil {
			g.logger.Warn("failed to release engine lock", zap.String("op", op), zap.Error(err))
		}
	}()

	return fn(ctx)
}
