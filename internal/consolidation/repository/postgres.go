package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindPendingUnbatched(ctx context.Context) ([]model.Order, error) {
	orders := []model.Order{}
	query := `
        SELECT * FROM sales_orders
        WHERE status = $1 AND batch_id IS NULL
        ORDER BY delivery_date ASC, id ASC
    `
	err := r.DB.SelectContext(ctx, &orders, query, string(model.OrderStatusPending))
	return orders, err
}

func (r *PGRepository) SaveBatches(ctx context.Context, batches []*model.Batch) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
        INSERT INTO consolidated_batches (
            id, product_name, color, total_quantity, order_numbers, plan_id, created_at, updated_at
        )
        VALUES (
            :id, :product_name, :color, :total_quantity, :order_numbers, :plan_id, :created_at, :updated_at
        )
    `
	link := `
        UPDATE sales_orders SET batch_id = $1, updated_at = $2
        WHERE id = ANY($3) AND batch_id IS NULL
    `

	for _, b := range batches {
		if _, err := tx.NamedExecContext(ctx, insert, b); err != nil {
			return fmt.Errorf("failed to insert batch %s/%s: %w", b.ProductName, b.Color, err)
		}

		res, err := tx.ExecContext(ctx, link, b.ID, b.UpdatedAt, pq.Array(b.OrderIDs))
		if err != nil {
			return fmt.Errorf("failed to link orders to batch %s: %w", b.ID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows != int64(len(b.OrderIDs)) {
			return apperror.Conflict("orders of %s/%s were consolidated concurrently", b.ProductName, b.Color)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.Batch, error) {
	batches := []model.Batch{}
	err := r.DB.SelectContext(ctx, &batches, `SELECT * FROM consolidated_batches ORDER BY created_at DESC, id DESC`)
	return batches, err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Batch, error) {
	var b model.Batch
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM consolidated_batches WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) Reset(ctx context.Context) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		what  string
	}{
		{`UPDATE sales_orders SET batch_id = NULL, plan_id = NULL WHERE batch_id IS NOT NULL OR plan_id IS NOT NULL`, "unlink orders"},
		{`UPDATE consolidated_batches SET plan_id = NULL`, "unlink batches"},
		{`DELETE FROM production_plans`, "delete plans"},
		{`DELETE FROM consolidated_batches`, "delete batches"},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("failed to %s: %w", s.what, err)
		}
	}

	return tx.Commit()
}
