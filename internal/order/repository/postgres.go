package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
	"github.com/fekuna/omnipos-production-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertOrderQuery = `
        INSERT INTO sales_orders (
            id, order_number, product_name, color, quantity, delivery_date,
            status, batch_id, plan_id, notes, created_at, updated_at
        )
        VALUES (
            :id, :order_number, :product_name, :color, :quantity, :delivery_date,
            :status, :batch_id, :plan_id, :notes, :created_at, :updated_at
        )
    `

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	_, err := r.DB.NamedExecContext(ctx, insertOrderQuery, o)
	if postgres.IsUniqueViolation(err) {
		return apperror.Conflict("line item for order %s (%s - %s) already exists", o.OrderNumber, o.ProductName, o.Color)
	}
	return err
}

func (r *PGRepository) CreateMany(ctx context.Context, orders []*model.Order) ([]model.LineKey, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := insertOrderQuery + ` ON CONFLICT (order_number, product_name, color) DO NOTHING`

	var skipped []model.LineKey
	for _, o := range orders {
		res, err := tx.NamedExecContext(ctx, query, o)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order %s: %w", o.OrderNumber, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			skipped = append(skipped, o.LineKey())
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return skipped, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	query := `SELECT * FROM sales_orders WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &o, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	orders := []model.Order{}
	query := `SELECT * FROM sales_orders`
	args := []interface{}{}
	if f.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, f.Status)
	}
	query += ` ORDER BY delivery_date ASC, id ASC`

	err := r.DB.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

func (r *PGRepository) LineExists(ctx context.Context, key model.LineKey) (bool, error) {
	var count int
	query := `SELECT count(*) FROM sales_orders WHERE order_number = $1 AND product_name = $2 AND color = $3`
	err := r.DB.GetContext(ctx, &count, query, key.OrderNumber, key.ProductName, key.Color)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus, updatedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sales_orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), updatedAt, id,
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.NotFound("order", id)
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sales_orders WHERE id = $1 AND batch_id IS NULL", id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.Conflict("order %s is missing or already consolidated", id)
	}
	return nil
}

func (r *PGRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM sales_orders`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE consolidated_batches SET plan_id = NULL`); err != nil {
		return 0, fmt.Errorf("failed to unlink batches: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM production_plans`); err != nil {
		return 0, fmt.Errorf("failed to delete plans: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM consolidated_batches`); err != nil {
		return 0, fmt.Errorf("failed to delete batches: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, tx.Commit()
}
