package rawmaterial

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial/dto"
)

type UseCase interface {
	RequirementForBatch(ctx context.Context, batchID string) (*model.BatchRequirement, error)
	RequirementForPlans(ctx context.Context, planIDs []string) ([]model.BatchRequirement, error)

	CreateRawMaterial(ctx context.Context, input *dto.CreateRawMaterialInput) (*model.RawMaterial, error)
	ListRawMaterials(ctx context.Context) ([]model.RawMaterial, error)
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	AddProductMaterial(ctx context.Context, input *dto.AddProductMaterialInput) (*model.BOMLine, error)
	ListProductMaterials(ctx context.Context, productID string) ([]model.BOMLine, error)
}
