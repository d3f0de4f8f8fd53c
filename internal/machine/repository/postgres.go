package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) Create(ctx context.Context, m *model.Machine) error {
	query := `
        INSERT INTO machines (id, name, capacity_per_day, is_active, created_at, updated_at)
        VALUES (:id, :name, :capacity_per_day, :is_active, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, m)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Machine, error) {
	var m model.Machine
	err := r.DB.GetContext(ctx, &m, `SELECT * FROM machines WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *PGRepository) FindActive(ctx context.Context) ([]model.Machine, error) {
	machines := []model.Machine{}
	err := r.DB.SelectContext(ctx, &machines, `SELECT * FROM machines WHERE is_active = TRUE ORDER BY id ASC`)
	return machines, err
}

func (r *PGRepository) Update(ctx context.Context, m *model.Machine) error {
	query := `
        UPDATE machines
        SET name = :name, capacity_per_day = :capacity_per_day, is_active = :is_active, updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, m)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperror.NotFound("machine", m.ID)
	}
	return nil
}
