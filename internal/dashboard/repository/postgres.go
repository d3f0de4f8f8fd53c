package repository

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const delayedCondition = `status = 'delayed' OR (status = 'pending' AND delivery_date < $1)`

func (r *PGRepository) FindPlanDetailsByDate(ctx context.Context, day time.Time) ([]model.PlanDetail, error) {
	details := []model.PlanDetail{}
	query := `
        SELECT p.*, COALESCE(b.product_name, '') AS product_name, COALESCE(b.color, '') AS color
        FROM production_plans p
        LEFT JOIN consolidated_batches b ON b.id = p.batch_id
        WHERE p.planned_date = $1
        ORDER BY p.machine_id ASC NULLS LAST, p.id ASC
    `
	err := r.DB.SelectContext(ctx, &details, query, day)
	return details, err
}

func (r *PGRepository) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM sales_orders WHERE status = $1`, string(status))
	return count, err
}

func (r *PGRepository) FindByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	orders := []model.Order{}
	query := `SELECT * FROM sales_orders WHERE status = $1 ORDER BY delivery_date ASC, id ASC LIMIT $2`
	err := r.DB.SelectContext(ctx, &orders, query, string(status), limit)
	return orders, err
}

func (r *PGRepository) CountDelayed(ctx context.Context, today time.Time) (int, error) {
	var count int
	err := r.DB.GetContext(ctx, &count, `SELECT count(*) FROM sales_orders WHERE `+delayedCondition, today)
	return count, err
}

func (r *PGRepository) FindDelayed(ctx context.Context, today time.Time, limit int) ([]model.Order, error) {
	orders := []model.Order{}
	query := `SELECT * FROM sales_orders WHERE ` + delayedCondition + ` ORDER BY delivery_date ASC, id ASC LIMIT $2`
	err := r.DB.SelectContext(ctx, &orders, query, today, limit)
	return orders, err
}
