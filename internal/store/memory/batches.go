package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

type ConsolidationRepository struct {
	st *Store
}

func (r *ConsolidationRepository) FindPendingUnbatched(_ context.Context) ([]model.Order, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	return r.st.collectOrders(func(o *model.Order) bool {
		return o.Status == model.OrderStatusPending && o.BatchID == nil
	}), nil
}

func (r *ConsolidationRepository) SaveBatches(_ context.Context, batches []*model.Batch) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	claimed := map[string]struct{}{}
	for _, b := range batches {
		if _, ok := r.st.s.batches[b.ID]; ok {
			return apperror.Conflict("batch %s already exists", b.ID)
		}
		for _, id := range b.OrderIDs {
			o, ok := r.st.s.orders[id]
			if !ok || o.BatchID != nil {
				return apperror.Conflict("orders of %s/%s were consolidated concurrently", b.ProductName, b.Color)
			}
			if _, dup := claimed[id]; dup {
				return apperror.Conflict("order %s appears in two batches", id)
			}
			claimed[id] = struct{}{}
		}
	}

	for _, b := range batches {
		r.st.s.batches[b.ID] = cloneBatch(*b)
		for _, id := range b.OrderIDs {
			o := r.st.s.orders[id]
			o.BatchID = strPtr(b.ID)
			o.UpdatedAt = b.UpdatedAt
			r.st.s.orders[id] = o
		}
	}
	return nil
}

func (r *ConsolidationRepository) FindAll(_ context.Context) ([]model.Batch, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]model.Batch, 0, len(r.st.s.batches))
	for _, b := range r.st.s.batches {
		out = append(out, cloneBatch(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ConsolidationRepository) FindByID(_ context.Context, id string) (*model.Batch, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.batchByID(id)
}

func (r *ConsolidationRepository) Reset(_ context.Context) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for id, o := range r.st.s.orders {
		o.BatchID = nil
		o.PlanID = nil
		r.st.s.orders[id] = o
	}
	r.st.s.plans = map[string]model.Plan{}
	r.st.s.batches = map[string]model.Batch{}
	return nil
}
