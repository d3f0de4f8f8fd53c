package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/engine"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
	"github.com/fekuna/omnipos-production-service/pkg/cache"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultColor   = "Default"
	defaultProduct = "Unknown"
)

type orderUseCase struct {
	repo   order.Repository
	guard  *engine.Guard
	cache  *cache.RedisClient
	logger logger.ZapLogger
	now    func() time.Time
}

func NewOrderUseCase(repo order.Repository, guard *engine.Guard, cache *cache.RedisClient, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:   repo,
		guard:  guard,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error) {
	if strings.TrimSpace(input.DeliveryDate) == "" {
		return nil, apperror.Validation("delivery_date is required")
	}
	o, err := uc.buildOrder(input)
	if err != nil {
		return nil, err
	}
	if o.ProductName == "" || o.Color == "" {
		return nil, apperror.Validation("product_name and color are required")
	}

	exists, err := uc.repo.LineExists(ctx, o.LineKey())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("line item for order %s (%s - %s) already exists", o.OrderNumber, o.ProductName, o.Color)
	}

	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.Int("quantity", o.Quantity),
	)
	return o, nil
}

// IngestOrders stores every valid line and reports the rest. A bad row never
// aborts the call; blank order numbers are skipped silently.
func (uc *orderUseCase) IngestOrders(ctx context.Context, inputs []dto.CreateOrderInput) (*dto.IngestResult, error) {
	result := &dto.IngestResult{Errors: []string{}}
	seen := make(map[model.LineKey]struct{}, len(inputs))
	valid := make([]*model.Order, 0, len(inputs))

	for i := range inputs {
		in := inputs[i]
		in.OrderNumber = strings.TrimSpace(in.OrderNumber)
		if in.OrderNumber == "" {
			continue
		}
		if strings.TrimSpace(in.Color) == "" {
			in.Color = defaultColor
		}
		if strings.TrimSpace(in.ProductName) == "" {
			in.ProductName = defaultProduct
		}

		o, err := uc.buildOrder(&in)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %s: %v", in.OrderNumber, err))
			continue
		}

		key := o.LineKey()
		if _, dup := seen[key]; dup {
			result.Errors = append(result.Errors, duplicateLine(key))
			continue
		}
		exists, err := uc.repo.LineExists(ctx, key)
		if err != nil {
			return nil, err
		}
		if exists {
			result.Errors = append(result.Errors, duplicateLine(key))
			continue
		}

		seen[key] = struct{}{}
		valid = append(valid, o)
	}

	if len(valid) > 0 {
		skipped, err := uc.repo.CreateMany(ctx, valid)
		if err != nil {
			uc.logger.Error("failed to store ingested orders", zap.Error(err))
			return nil, err
		}
		for _, key := range skipped {
			result.Errors = append(result.Errors, duplicateLine(key))
		}
		result.Created = len(valid) - len(skipped)
	}

	uc.logger.Info("orders ingested",
		zap.Int("received", len(inputs)),
		zap.Int("created", result.Created),
		zap.Int("rejected", len(result.Errors)),
	)
	return result, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperror.NotFound("order", id)
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error) {
	if filters == nil {
		filters = &dto.OrderFilters{}
	}
	if filters.Status != "" && !model.OrderStatus(filters.Status).IsValid() {
		return nil, apperror.Validation("unknown status %q", filters.Status)
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	status := model.OrderStatus(input.Status)
	if !status.IsValid() {
		return nil, apperror.Validation("unknown status %q", input.Status)
	}

	o, err := uc.GetOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	if err := uc.repo.UpdateStatus(ctx, o.ID, status, now); err != nil {
		return nil, err
	}
	o.Status = status
	o.UpdatedAt = now

	uc.logger.Info("order status updated", zap.String("order_id", o.ID), zap.String("status", string(status)))
	return o, nil
}

// DeleteOrder refuses consolidated orders: removing one would break its
// batch total.
func (uc *orderUseCase) DeleteOrder(ctx context.Context, id string) error {
	o, err := uc.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.BatchID != nil {
		return apperror.Conflict("order %s belongs to batch %s; reset consolidation first", o.ID, *o.BatchID)
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *orderUseCase) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := uc.guard.Do(ctx, "delete-all-orders", func(ctx context.Context) error {
		n, err := uc.repo.DeleteAll(ctx)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	engine.InvalidateSchedules(ctx, uc.cache, uc.logger)
	uc.logger.Warn("all orders deleted", zap.Int64("count", deleted))
	return deleted, nil
}

func (uc *orderUseCase) buildOrder(input *dto.CreateOrderInput) (*model.Order, error) {
	orderNumber := strings.TrimSpace(input.OrderNumber)
	if orderNumber == "" {
		return nil, apperror.Validation("order_id is required")
	}
	if input.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be a positive integer, got %d", input.Quantity)
	}

	now := uc.now()
	delivery := model.Day(now)
	if raw := strings.TrimSpace(input.DeliveryDate); raw != "" {
		if len(raw) > len(model.DateLayout) {
			raw = raw[:len(model.DateLayout)]
		}
		d, err := model.ParseDay(raw)
		if err != nil {
			return nil, apperror.Validation("invalid delivery_date %q", input.DeliveryDate)
		}
		delivery = d
	}

	var notes *string
	if n := strings.TrimSpace(input.Notes); n != "" {
		notes = &n
	}

	return &model.Order{
		BaseModel:    model.NewBase(now),
		OrderNumber:  orderNumber,
		ProductName:  strings.TrimSpace(input.ProductName),
		Color:        strings.TrimSpace(input.Color),
		Quantity:     input.Quantity,
		DeliveryDate: delivery,
		Status:       model.OrderStatusPending,
		Notes:        notes,
	}, nil
}

func duplicateLine(key model.LineKey) string {
	return fmt.Sprintf("Duplicate Line: %s (%s - %s)", key.OrderNumber, key.ProductName, key.Color)
}
