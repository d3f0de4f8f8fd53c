package order

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*model.Order, error)
	IngestOrders(ctx context.Context, inputs []dto.CreateOrderInput) (*dto.IngestResult, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}
