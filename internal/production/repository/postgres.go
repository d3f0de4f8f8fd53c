package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) FindUnplannedBatches(ctx context.Context) ([]model.Batch, error) {
	batches := []model.Batch{}
	query := `SELECT * FROM consolidated_batches WHERE plan_id IS NULL ORDER BY created_at ASC, id ASC`
	err := r.DB.SelectContext(ctx, &batches, query)
	return batches, err
}

func (r *PGRepository) EarliestDeliveryByBatch(ctx context.Context, batchIDs []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(batchIDs))
	if len(batchIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
        SELECT batch_id, MIN(delivery_date) AS earliest
        FROM sales_orders
        WHERE batch_id IN (?)
        GROUP BY batch_id
    `, batchIDs)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var rows []struct {
		BatchID  string    `db:"batch_id"`
		Earliest time.Time `db:"earliest"`
	}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.BatchID] = model.Day(row.Earliest)
	}
	return result, nil
}

func (r *PGRepository) FindActiveMachines(ctx context.Context) ([]model.Machine, error) {
	machines := []model.Machine{}
	err := r.DB.SelectContext(ctx, &machines, `SELECT * FROM machines WHERE is_active = TRUE ORDER BY id ASC`)
	return machines, err
}

func (r *PGRepository) SaveSchedule(ctx context.Context, defaultMachine *model.Machine, plans []*model.Plan) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if defaultMachine != nil {
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO machines (id, name, capacity_per_day, is_active, created_at, updated_at)
            VALUES (:id, :name, :capacity_per_day, :is_active, :created_at, :updated_at)
        `, defaultMachine)
		if err != nil {
			return fmt.Errorf("failed to insert default machine: %w", err)
		}
	}

	insert := `
        INSERT INTO production_plans (
            id, planned_date, batch_id, quantity_planned, status, machine_id, created_at, updated_at
        )
        VALUES (
            :id, :planned_date, :batch_id, :quantity_planned, :status, :machine_id, :created_at, :updated_at
        )
    `
	for _, p := range plans {
		if _, err := tx.NamedExecContext(ctx, insert, p); err != nil {
			return fmt.Errorf("failed to insert plan %s: %w", p.ID, err)
		}
		if p.BatchID == nil {
			continue
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE consolidated_batches SET plan_id = $1, updated_at = $2 WHERE id = $3 AND plan_id IS NULL`,
			p.ID, p.UpdatedAt, *p.BatchID,
		)
		if err != nil {
			return fmt.Errorf("failed to link batch %s: %w", *p.BatchID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.Conflict("batch %s was planned concurrently", *p.BatchID)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE sales_orders SET plan_id = $1, updated_at = $2 WHERE batch_id = $3`,
			p.ID, p.UpdatedAt, *p.BatchID,
		); err != nil {
			return fmt.Errorf("failed to link orders of batch %s: %w", *p.BatchID, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) FindByDate(ctx context.Context, day time.Time) ([]model.Plan, error) {
	plans := []model.Plan{}
	query := `
        SELECT * FROM production_plans
        WHERE planned_date = $1
        ORDER BY machine_id ASC NULLS LAST, id ASC
    `
	err := r.DB.SelectContext(ctx, &plans, query, day)
	return plans, err
}

func (r *PGRepository) FindByRange(ctx context.Context, start, end time.Time) ([]model.Plan, error) {
	plans := []model.Plan{}
	query := `
        SELECT * FROM production_plans
        WHERE planned_date BETWEEN $1 AND $2
        ORDER BY planned_date ASC, machine_id ASC NULLS LAST, id ASC
    `
	err := r.DB.SelectContext(ctx, &plans, query, start, end)
	return plans, err
}
