package handler

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial/dto"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type RawMaterialHandler struct {
	uc     rawmaterial.UseCase
	logger logger.ZapLogger
}

func NewRawMaterialHandler(uc rawmaterial.UseCase, log logger.ZapLogger) *RawMaterialHandler {
	return &RawMaterialHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *RawMaterialHandler) ServiceName() string {
	return "omnipos.production.v1.RawMaterialService"
}

func (h *RawMaterialHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"GetBatchRequirements": h.GetBatchRequirements,
		"GetPlanRequirements":  h.GetPlanRequirements,
		"CreateRawMaterial":    h.CreateRawMaterial,
		"ListRawMaterials":     h.ListRawMaterials,
		"CreateProduct":        h.CreateProduct,
		"ListProducts":         h.ListProducts,
		"AddProductMaterial":   h.AddProductMaterial,
		"ListProductMaterials": h.ListProductMaterials,
	}
}

func (h *RawMaterialHandler) GetBatchRequirements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		BatchID string `json:"batch_id"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	result, err := h.uc.RequirementForBatch(ctx, input.BatchID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(result)
}

func (h *RawMaterialHandler) GetPlanRequirements(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		PlanIDs []string `json:"plan_ids"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	result, err := h.uc.RequirementForPlans(ctx, input.PlanIDs)
	if err != nil {
		h.logger.Error("failed to compute plan requirements", zap.Int("plans", len(input.PlanIDs)), zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(result)
}

func (h *RawMaterialHandler) CreateRawMaterial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateRawMaterialInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	m, err := h.uc.CreateRawMaterial(ctx, &input)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(m)
}

func (h *RawMaterialHandler) ListRawMaterials(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	materials, err := h.uc.ListRawMaterials(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(materials)
}

func (h *RawMaterialHandler) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateProductInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	p, err := h.uc.CreateProduct(ctx, &input)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(p)
}

func (h *RawMaterialHandler) ListProducts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	products, err := h.uc.ListProducts(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	for i := range products {
		if products[i].Materials == nil {
			products[i].Materials = []model.BOMLine{}
		}
	}
	return rpc.EncodeList(products)
}

func (h *RawMaterialHandler) AddProductMaterial(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.AddProductMaterialInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	line, err := h.uc.AddProductMaterial(ctx, &input)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(line)
}

func (h *RawMaterialHandler) ListProductMaterials(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		ProductID string `json:"product_id"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	lines, err := h.uc.ListProductMaterials(ctx, input.ProductID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(lines)
}
