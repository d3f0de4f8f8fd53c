package rawmaterial

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type Repository interface {
	CreateRawMaterial(ctx context.Context, m *model.RawMaterial) error
	FindAllRawMaterials(ctx context.Context) ([]model.RawMaterial, error)
	FindRawMaterialByID(ctx context.Context, id string) (*model.RawMaterial, error)

	// CreateProduct fails with a conflict when the name is taken.
	CreateProduct(ctx context.Context, p *model.Product) error
	FindAllProducts(ctx context.Context) ([]model.Product, error)
	FindProductByID(ctx context.Context, id string) (*model.Product, error)
	FindProductByName(ctx context.Context, name string) (*model.Product, error)

	AddBOMLine(ctx context.Context, line *model.ProductRawMaterial) error
	// FindBOMLines returns the product's lines joined with their raw material,
	// in insertion order.
	FindBOMLines(ctx context.Context, productID string) ([]model.BOMLine, error)

	FindBatchByID(ctx context.Context, id string) (*model.Batch, error)
	FindPlanByID(ctx context.Context, id string) (*model.Plan, error)
}
