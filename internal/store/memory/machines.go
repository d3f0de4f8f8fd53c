package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

type MachineRepository struct {
	st *Store
}

func (st *Store) activeMachines() []model.Machine {
	out := []model.Machine{}
	for _, m := range st.s.machines {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MachineRepository) Create(_ context.Context, m *model.Machine) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.s.machines[m.ID]; ok {
		return apperror.Conflict("machine %s already exists", m.ID)
	}
	r.st.s.machines[m.ID] = *m
	return nil
}

func (r *MachineRepository) FindByID(_ context.Context, id string) (*model.Machine, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	m, ok := r.st.s.machines[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MachineRepository) FindActive(_ context.Context) ([]model.Machine, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.activeMachines(), nil
}

func (r *MachineRepository) Update(_ context.Context, m *model.Machine) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.s.machines[m.ID]; !ok {
		return apperror.NotFound("machine", m.ID)
	}
	r.st.s.machines[m.ID] = *m
	return nil
}
