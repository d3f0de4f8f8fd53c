package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
)

type Repository interface {
	Create(ctx context.Context, order *model.Order) error
	// CreateMany inserts all orders in one transaction. Lines that already
	// exist are skipped and returned instead of failing the batch.
	CreateMany(ctx context.Context, orders []*model.Order) ([]model.LineKey, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	LineExists(ctx context.Context, key model.LineKey) (bool, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus, updatedAt time.Time) error
	// Delete removes an order only while it is unbatched; otherwise Conflict.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every order together with all plans and batches.
	DeleteAll(ctx context.Context) (int64, error)
}
