package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateRawMaterial(ctx context.Context, m *model.RawMaterial) error {
	query := `
        INSERT INTO raw_materials (id, name, unit, created_at, updated_at)
        VALUES (:id, :name, :unit, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) FindAllRawMaterials(ctx context.Context) ([]model.RawMaterial, error) {
	materials := []model.RawMaterial{}
	err := r.DB.SelectContext(ctx, &materials, `SELECT * FROM raw_materials ORDER BY name ASC, id ASC`)
	return materials, err
}

func (r *PGRepository) FindRawMaterialByID(ctx context.Context, id string) (*model.RawMaterial, error) {
	var m model.RawMaterial
	if err := r.getOne(ctx, &m, `SELECT * FROM raw_materials WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}
	if m.ID == "" {
		return nil, nil
	}
	return &m, nil
}

func (r *PGRepository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (id, name, created_at, updated_at)
        VALUES (:id, :name, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, p)
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("product %q already exists", p.Name)
	}
	return err
}

func (r *PGRepository) FindAllProducts(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	err := r.DB.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY name ASC`)
	return products, err
}

func (r *PGRepository) FindProductByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	if err := r.getOne(ctx, &p, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *PGRepository) FindProductByName(ctx context.Context, name string) (*model.Product, error) {
	var p model.Product
	if err := r.getOne(ctx, &p, `SELECT * FROM products WHERE name = $1 LIMIT 1`, name); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

func (r *PGRepository) AddBOMLine(ctx context.Context, line *model.ProductRawMaterial) error {
	query := `
        INSERT INTO product_raw_materials (id, product_id, raw_material_id, quantity_per_unit)
        VALUES (:id, :product_id, :raw_material_id, :quantity_per_unit)
    `
	_, err := r.DB.NamedExecContext(ctx, query, line)
	if postgres.IsForeignKeyViolation(err) {
		return apperror.NotFound("product or raw material", line.ProductID+"/"+line.RawMaterialID)
	}
	return err
}

func (r *PGRepository) FindBOMLines(ctx context.Context, productID string) ([]model.BOMLine, error) {
	lines := []model.BOMLine{}
	query := `
        SELECT prm.id, prm.product_id, prm.raw_material_id, prm.quantity_per_unit,
               rm.name AS raw_material_name, rm.unit
        FROM product_raw_materials prm
        JOIN raw_materials rm ON rm.id = prm.raw_material_id
        WHERE prm.product_id = $1
        ORDER BY prm.id ASC
    `
	err := r.DB.SelectContext(ctx, &lines, query, productID)
	return lines, err
}

func (r *PGRepository) FindBatchByID(ctx context.Context, id string) (*model.Batch, error) {
	var b model.Batch
	if err := r.getOne(ctx, &b, `SELECT * FROM consolidated_batches WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, nil
	}
	return &b, nil
}

func (r *PGRepository) FindPlanByID(ctx context.Context, id string) (*model.Plan, error) {
	var p model.Plan
	if err := r.getOne(ctx, &p, `SELECT * FROM production_plans WHERE id = $1 LIMIT 1`, id); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, nil
	}
	return &p, nil
}

// getOne leaves dest untouched when no row matches.
func (r *PGRepository) getOne(ctx context.Context, dest any, query string, args ...any) error {
	err := r.DB.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
