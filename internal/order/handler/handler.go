package handler

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *OrderHandler) ServiceName() string {
	return "omnipos.production.v1.OrderService"
}

func (h *OrderHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"CreateOrder":       h.CreateOrder,
		"IngestOrders":      h.IngestOrders,
		"GetOrder":          h.GetOrder,
		"ListOrders":        h.ListOrders,
		"UpdateOrderStatus": h.UpdateOrderStatus,
		"DeleteOrder":       h.DeleteOrder,
		"DeleteAllOrders":   h.DeleteAllOrders,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *OrderHandler) CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateOrderInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	o, err := h.uc.CreateOrder(ctx, &input)
	if err != nil {
		h.logger.Warn("failed to create order", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(MapOrder(o))
}

func (h *OrderHandler) IngestOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		Orders []dto.CreateOrderInput `json:"orders"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	result, err := h.uc.IngestOrders(ctx, input.Orders)
	if err != nil {
		h.logger.Error("failed to ingest orders", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(result)
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input idRequest
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	o, err := h.uc.GetOrder(ctx, input.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(MapOrder(o))
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		Status string `json:"status"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	orders, err := h.uc.ListOrders(ctx, &dto.OrderFilters{Status: input.Status})
	if err != nil {
		return nil, rpc.ToStatus(err)
	}

	views := make([]map[string]any, len(orders))
	for i := range orders {
		views[i] = MapOrder(&orders[i])
	}
	return rpc.EncodeList(views)
}

func (h *OrderHandler) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.UpdateStatusInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	o, err := h.uc.UpdateStatus(ctx, &input)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(MapOrder(o))
}

func (h *OrderHandler) DeleteOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input idRequest
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	if err := h.uc.DeleteOrder(ctx, input.ID); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(map[string]any{"ok": true})
}

func (h *OrderHandler) DeleteAllOrders(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	deleted, err := h.uc.DeleteAll(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(map[string]any{"ok": true, "deleted": deleted})
}

// MapOrder renders an order for responses. Shared with the dashboard handler.
func MapOrder(o *model.Order) map[string]any {
	if o == nil {
		return nil
	}
	return map[string]any{
		"id":                    o.ID,
		"order_id":              o.OrderNumber,
		"product_name":          o.ProductName,
		"color":                 o.Color,
		"quantity":              o.Quantity,
		"delivery_date":         model.FormatDay(o.DeliveryDate),
		"status":                string(o.Status),
		"consolidated_batch_id": o.BatchID,
		"production_plan_id":    o.PlanID,
		"notes":                 o.Notes,
		"created_at":            o.CreatedAt,
	}
}
