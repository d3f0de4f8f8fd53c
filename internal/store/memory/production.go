package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

type ProductionRepository struct {
	st *Store
}

func (r *ProductionRepository) FindUnplannedBatches(_ context.Context) ([]model.Batch, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := []model.Batch{}
	for _, b := range r.st.s.batches {
		if b.PlanID == nil {
			out = append(out, cloneBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ProductionRepository) EarliestDeliveryByBatch(_ context.Context, batchIDs []string) (map[string]time.Time, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	wanted := make(map[string]struct{}, len(batchIDs))
	for _, id := range batchIDs {
		wanted[id] = struct{}{}
	}

	result := make(map[string]time.Time, len(batchIDs))
	for _, o := range r.st.s.orders {
		if o.BatchID == nil {
			continue
		}
		if _, ok := wanted[*o.BatchID]; !ok {
			continue
		}
		d := model.Day(o.DeliveryDate)
		if cur, ok := result[*o.BatchID]; !ok || d.Before(cur) {
			result[*o.BatchID] = d
		}
	}
	return result, nil
}

func (r *ProductionRepository) FindActiveMachines(_ context.Context) ([]model.Machine, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.activeMachines(), nil
}

func (r *ProductionRepository) SaveSchedule(_ context.Context, defaultMachine *model.Machine, plans []*model.Plan) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	linked := map[string]struct{}{}
	for _, p := range plans {
		if _, ok := r.st.s.plans[p.ID]; ok {
			return apperror.Conflict("plan %s already exists", p.ID)
		}
		if p.BatchID == nil {
			continue
		}
		b, ok := r.st.s.batches[*p.BatchID]
		if !ok {
			return apperror.NotFound("batch", *p.BatchID)
		}
		if _, dup := linked[b.ID]; dup || b.PlanID != nil {
			return apperror.Conflict("batch %s was planned concurrently", b.ID)
		}
		linked[b.ID] = struct{}{}
	}

	if defaultMachine != nil {
		r.st.s.machines[defaultMachine.ID] = *defaultMachine
	}
	for _, p := range plans {
		r.st.s.plans[p.ID] = clonePlan(*p)
		if p.BatchID == nil {
			continue
		}
		b := r.st.s.batches[*p.BatchID]
		b.PlanID = strPtr(p.ID)
		b.UpdatedAt = p.UpdatedAt
		r.st.s.batches[b.ID] = b

		for id, o := range r.st.s.orders {
			if o.BatchID != nil && *o.BatchID == b.ID {
				o.PlanID = strPtr(p.ID)
				o.UpdatedAt = p.UpdatedAt
				r.st.s.orders[id] = o
			}
		}
	}
	return nil
}

func (r *ProductionRepository) FindByDate(_ context.Context, day time.Time) ([]model.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	return r.st.plansWhere(func(p *model.Plan) bool {
		return sameDay(p.PlannedDate, day)
	}), nil
}

func (r *ProductionRepository) FindByRange(_ context.Context, start, end time.Time) ([]model.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	start, end = model.Day(start), model.Day(end)
	return r.st.plansWhere(func(p *model.Plan) bool {
		d := model.Day(p.PlannedDate)
		return !d.Before(start) && !d.After(end)
	}), nil
}
