package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/consolidation"
	"github.com/fekuna/omnipos-production-service/internal/engine"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/pkg/cache"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
)

type consolidationUseCase struct {
	repo   consolidation.Repository
	guard  *engine.Guard
	cache  *cache.RedisClient
	logger logger.ZapLogger
	now    func() time.Time
}

func NewConsolidationUseCase(repo consolidation.Repository, guard *engine.Guard, cache *cache.RedisClient, log logger.ZapLogger) consolidation.UseCase {
	return &consolidationUseCase{
		repo:   repo,
		guard:  guard,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

// Consolidate groups every pending, unbatched order by exact product and
// color. Batches come back in the order their first order appeared, which is
// earliest delivery date first.
func (uc *consolidationUseCase) Consolidate(ctx context.Context) ([]model.Batch, error) {
	var created []model.Batch
	err := uc.guard.Do(ctx, "consolidate", func(ctx context.Context) error {
		orders, err := uc.repo.FindPendingUnbatched(ctx)
		if err != nil {
			return err
		}
		if len(orders) == 0 {
			return nil
		}

		batches := groupOrders(orders, uc.now())
		if err := uc.repo.SaveBatches(ctx, batches); err != nil {
			return err
		}

		created = make([]model.Batch, len(batches))
		for i, b := range batches {
			created[i] = *b
		}
		uc.logger.Info("orders consolidated",
			zap.Int("orders", len(orders)),
			zap.Int("batches", len(batches)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []model.Batch{}
	}
	return created, nil
}

func groupOrders(orders []model.Order, now time.Time) []*model.Batch {
	index := make(map[model.GroupKey]*model.Batch)
	var batches []*model.Batch

	for i := range orders {
		o := &orders[i]
		key := model.GroupKey{ProductName: o.ProductName, Color: o.Color}
		b, ok := index[key]
		if !ok {
			b = &model.Batch{
				BaseModel:    model.NewBase(now),
				ProductName:  o.ProductName,
				Color:        o.Color,
				OrderNumbers: []string{},
			}
			index[key] = b
			batches = append(batches, b)
		}
		b.TotalQuantity += o.Quantity
		b.OrderNumbers = append(b.OrderNumbers, o.OrderNumber)
		b.OrderIDs = append(b.OrderIDs, o.ID)
	}
	return batches
}

func (uc *consolidationUseCase) Reset(ctx context.Context) error {
	err := uc.guard.Do(ctx, "reset", func(ctx context.Context) error {
		return uc.repo.Reset(ctx)
	})
	if err != nil {
		return err
	}
	engine.InvalidateSchedules(ctx, uc.cache, uc.logger)
	uc.logger.Warn("consolidation reset: all plans and batches removed")
	return nil
}

func (uc *consolidationUseCase) ListBatches(ctx context.Context) ([]model.Batch, error) {
	return uc.repo.FindAll(ctx)
}

func (uc *consolidationUseCase) GetBatch(ctx context.Context, id string) (*model.Batch, error) {
	b, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperror.NotFound("batch", id)
	}
	return b, nil
}
