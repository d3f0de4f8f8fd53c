package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial/dto"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultUnit = "kg"

type rawMaterialUseCase struct {
	repo   rawmaterial.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewRawMaterialUseCase(repo rawmaterial.Repository, log logger.ZapLogger) rawmaterial.UseCase {
	return &rawMaterialUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

// RequirementForBatch multiplies the bill of materials of the batch's product
// by the batch total. A product missing from the catalog yields no
// requirements rather than an error.
func (uc *rawMaterialUseCase) RequirementForBatch(ctx context.Context, batchID string) (*model.BatchRequirement, error) {
	b, err := uc.repo.FindBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperror.NotFound("batch", batchID)
	}
	return uc.requirement(ctx, b)
}

func (uc *rawMaterialUseCase) requirement(ctx context.Context, b *model.Batch) (*model.BatchRequirement, error) {
	req := &model.BatchRequirement{
		BatchID:       b.ID,
		ProductName:   b.ProductName,
		Color:         b.Color,
		TotalQuantity: b.TotalQuantity,
		Requirements:  []model.RequirementItem{},
	}

	p, err := uc.repo.FindProductByName(ctx, b.ProductName)
	if err != nil {
		return nil, err
	}
	if p == nil {
		uc.logger.Debug("no bill of materials for product", zap.String("product_name", b.ProductName))
		return req, nil
	}

	lines, err := uc.repo.FindBOMLines(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	batchTotal := decimal.NewFromInt(int64(b.TotalQuantity))
	for _, line := range lines {
		total, _ := decimal.NewFromFloat(line.QuantityPerUnit).Mul(batchTotal).RoundBank(2).Float64()
		req.Requirements = append(req.Requirements, model.RequirementItem{
			RawMaterialName: line.RawMaterialName,
			Unit:            line.Unit,
			QuantityPerUnit: line.QuantityPerUnit,
			TotalQuantity:   total,
		})
	}
	return req, nil
}

// RequirementForPlans resolves each plan to its batch. Unknown plans, plans
// without a batch and batches already reported are skipped; the rest keep
// the order of planIDs.
func (uc *rawMaterialUseCase) RequirementForPlans(ctx context.Context, planIDs []string) ([]model.BatchRequirement, error) {
	result := []model.BatchRequirement{}
	seen := make(map[string]struct{}, len(planIDs))

	for _, planID := range planIDs {
		p, err := uc.repo.FindPlanByID(ctx, planID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.BatchID == nil {
			continue
		}
		if _, dup := seen[*p.BatchID]; dup {
			continue
		}
		seen[*p.BatchID] = struct{}{}

		b, err := uc.repo.FindBatchByID(ctx, *p.BatchID)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		req, err := uc.requirement(ctx, b)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, nil
}

func (uc *rawMaterialUseCase) CreateRawMaterial(ctx context.Context, input *dto.CreateRawMaterialInput) (*model.RawMaterial, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	m := &model.RawMaterial{
		BaseModel: model.NewBase(uc.now()),
		Name:      name,
		Unit:      unit,
	}
	if err := uc.repo.CreateRawMaterial(ctx, m); err != nil {
		return nil, err
	}
	uc.logger.Info("raw material created", zap.String("raw_material_id", m.ID), zap.String("name", m.Name))
	return m, nil
}

func (uc *rawMaterialUseCase) ListRawMaterials(ctx context.Context) ([]model.RawMaterial, error) {
	return uc.repo.FindAllRawMaterials(ctx)
}

func (uc *rawMaterialUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}

	p := &model.Product{
		BaseModel: model.NewBase(uc.now()),
		Name:      name,
		Materials: []model.BOMLine{},
	}
	if err := uc.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	uc.logger.Info("product created", zap.String("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (uc *rawMaterialUseCase) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := uc.repo.FindAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		lines, err := uc.repo.FindBOMLines(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Materials = lines
	}
	return products, nil
}

func (uc *rawMaterialUseCase) AddProductMaterial(ctx context.Context, input *dto.AddProductMaterialInput) (*model.BOMLine, error) {
	if input.QuantityPerUnit <= 0 {
		return nil, apperror.Validation("quantity_per_unit must be positive, got %v", input.QuantityPerUnit)
	}

	p, err := uc.repo.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product", input.ProductID)
	}
	m, err := uc.repo.FindRawMaterialByID(ctx, input.RawMaterialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperror.NotFound("raw material", input.RawMaterialID)
	}

	line := model.ProductRawMaterial{
		ID:              model.NewID(),
		ProductID:       p.ID,
		RawMaterialID:   m.ID,
		QuantityPerUnit: input.QuantityPerUnit,
	}
	if err := uc.repo.AddBOMLine(ctx, &line); err != nil {
		return nil, err
	}
	return &model.BOMLine{
		ProductRawMaterial: line,
		RawMaterialName:    m.Name,
		Unit:               m.Unit,
	}, nil
}

func (uc *rawMaterialUseCase) ListProductMaterials(ctx context.Context, productID string) ([]model.BOMLine, error) {
	p, err := uc.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("product", productID)
	}
	return uc.repo.FindBOMLines(ctx, productID)
}
