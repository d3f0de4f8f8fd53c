package handler

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/consolidation"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type ConsolidationHandler struct {
	uc     consolidation.UseCase
	logger logger.ZapLogger
}

func NewConsolidationHandler(uc consolidation.UseCase, log logger.ZapLogger) *ConsolidationHandler {
	return &ConsolidationHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ConsolidationHandler) ServiceName() string {
	return "omnipos.production.v1.ConsolidationService"
}

func (h *ConsolidationHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"Consolidate":        h.Consolidate,
		"ResetConsolidation": h.ResetConsolidation,
		"ListBatches":        h.ListBatches,
		"GetBatch":           h.GetBatch,
	}
}

func (h *ConsolidationHandler) Consolidate(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	batches, err := h.uc.Consolidate(ctx)
	if err != nil {
		h.logger.Error("consolidation failed", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapBatches(batches))
}

func (h *ConsolidationHandler) ResetConsolidation(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := h.uc.Reset(ctx); err != nil {
		h.logger.Error("consolidation reset failed", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(map[string]any{"ok": true})
}

func (h *ConsolidationHandler) ListBatches(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	batches, err := h.uc.ListBatches(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapBatches(batches))
}

func (h *ConsolidationHandler) GetBatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		ID string `json:"id"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	b, err := h.uc.GetBatch(ctx, input.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(mapBatch(b))
}

func mapBatches(batches []model.Batch) []map[string]any {
	out := make([]map[string]any, len(batches))
	for i := range batches {
		out[i] = mapBatch(&batches[i])
	}
	return out
}

func mapBatch(b *model.Batch) map[string]any {
	orderNumbers := []string(b.OrderNumbers)
	if orderNumbers == nil {
		orderNumbers = []string{}
	}
	return map[string]any{
		"id":                 b.ID,
		"product_name":       b.ProductName,
		"color":              b.Color,
		"total_quantity":     b.TotalQuantity,
		"order_ids":          orderNumbers,
		"production_plan_id": b.PlanID,
		"created_at":         b.CreatedAt,
	}
}
