package memory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type DashboardRepository struct {
	st *Store
}

func (r *DashboardRepository) FindPlanDetailsByDate(_ context.Context, day time.Time) ([]model.PlanDetail, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	plans := r.st.plansWhere(func(p *model.Plan) bool {
		return sameDay(p.PlannedDate, day)
	})
	out := make([]model.PlanDetail, len(plans))
	for i, p := range plans {
		out[i] = model.PlanDetail{Plan: p}
		if p.BatchID == nil {
			continue
		}
		if b, ok := r.st.s.batches[*p.BatchID]; ok {
			out[i].ProductName = b.ProductName
			out[i].Color = b.Color
		}
	}
	return out, nil
}

func (r *DashboardRepository) CountByStatus(ctx context.Context, status model.OrderStatus) (int, error) {
	orders, err := r.FindByStatus(ctx, status, 0)
	return len(orders), err
}

// FindByStatus returns at most limit orders; a limit of zero means all.
func (r *DashboardRepository) FindByStatus(_ context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	orders := r.st.collectOrders(func(o *model.Order) bool { return o.Status == status })
	return truncate(orders, limit), nil
}

func (r *DashboardRepository) CountDelayed(ctx context.Context, today time.Time) (int, error) {
	orders, err := r.FindDelayed(ctx, today, 0)
	return len(orders), err
}

func (r *DashboardRepository) FindDelayed(_ context.Context, today time.Time, limit int) ([]model.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	today = model.Day(today)
	orders := r.st.collectOrders(func(o *model.Order) bool {
		if o.Status == model.OrderStatusDelayed {
			return true
		}
		return o.Status == model.OrderStatusPending && model.Day(o.DeliveryDate).Before(today)
	})
	return truncate(orders, limit), nil
}

func truncate(orders []model.Order, limit int) []model.Order {
	if limit > 0 && len(orders) > limit {
		return orders[:limit]
	}
	return orders
}
