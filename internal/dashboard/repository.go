package dashboard

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type Repository interface {
	// FindPlanDetailsByDate returns the day's plans joined with their batch,
	// ordered by machine id.
	FindPlanDetailsByDate(ctx context.Context, day time.Time) ([]model.PlanDetail, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int, error)
	FindByStatus(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)

	// Delayed orders are those marked delayed plus pending orders due before
	// today.
	CountDelayed(ctx context.Context, today time.Time) (int, error)
	FindDelayed(ctx context.Context, today time.Time, limit int) ([]model.Order, error)
}
