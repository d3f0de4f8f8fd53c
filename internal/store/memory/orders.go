package memory

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
)

type OrderRepository struct {
	st *Store
}

func (r *OrderRepository) lineTaken(key model.LineKey) bool {
	for _, o := range r.st.s.orders {
		if o.LineKey() == key {
			return true
		}
	}
	return false
}

func (r *OrderRepository) Create(_ context.Context, o *model.Order) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if r.lineTaken(o.LineKey()) {
		return apperror.Conflict("line item for order %s (%s - %s) already exists", o.OrderNumber, o.ProductName, o.Color)
	}
	r.st.s.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) CreateMany(_ context.Context, orders []*model.Order) ([]model.LineKey, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var skipped []model.LineKey
	for _, o := range orders {
		if r.lineTaken(o.LineKey()) {
			skipped = append(skipped, o.LineKey())
			continue
		}
		r.st.s.orders[o.ID] = cloneOrder(*o)
	}
	return skipped, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	o, ok := r.st.s.orders[id]
	if !ok {
		return nil, nil
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r *OrderRepository) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	return r.st.collectOrders(func(o *model.Order) bool {
		return f.Status == "" || string(o.Status) == f.Status
	}), nil
}

func (r *OrderRepository) LineExists(_ context.Context, key model.LineKey) (bool, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.lineTaken(key), nil
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status model.OrderStatus, updatedAt time.Time) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	o, ok := r.st.s.orders[id]
	if !ok {
		return apperror.NotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.st.s.orders[id] = o
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	o, ok := r.st.s.orders[id]
	if !ok || o.BatchID != nil {
		return apperror.Conflict("order %s is missing or already consolidated", id)
	}
	delete(r.st.s.orders, id)
	return nil
}

func (r *OrderRepository) DeleteAll(_ context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	deleted := int64(len(r.st.s.orders))
	r.st.s.orders = map[string]model.Order{}
	r.st.s.plans = map[string]model.Plan{}
	r.st.s.batches = map[string]model.Batch{}
	return deleted, nil
}
