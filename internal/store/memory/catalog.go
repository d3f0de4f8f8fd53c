package memory

import (
	"context"
	"sort"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

type RawMaterialRepository struct {
	st *Store
}

func (r *RawMaterialRepository) CreateRawMaterial(_ context.Context, m *model.RawMaterial) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.s.rawMaterials[m.ID] = *m
	return nil
}

func (r *RawMaterialRepository) FindAllRawMaterials(_ context.Context) ([]model.RawMaterial, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]model.RawMaterial, 0, len(r.st.s.rawMaterials))
	for _, m := range r.st.s.rawMaterials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *RawMaterialRepository) FindRawMaterialByID(_ context.Context, id string) (*model.RawMaterial, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	m, ok := r.st.s.rawMaterials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *RawMaterialRepository) CreateProduct(_ context.Context, p *model.Product) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, existing := range r.st.s.products {
		if existing.Name == p.Name {
			return apperror.Conflict("product %q already exists", p.Name)
		}
	}
	stored := *p
	stored.Materials = nil
	r.st.s.products[p.ID] = stored
	return nil
}

func (r *RawMaterialRepository) FindAllProducts(_ context.Context) ([]model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := make([]model.Product, 0, len(r.st.s.products))
	for _, p := range r.st.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RawMaterialRepository) FindProductByID(_ context.Context, id string) (*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *RawMaterialRepository) FindProductByName(_ context.Context, name string) (*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	for _, p := range r.st.s.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *RawMaterialRepository) AddBOMLine(_ context.Context, line *model.ProductRawMaterial) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.s.products[line.ProductID]; !ok {
		return apperror.NotFound("product", line.ProductID)
	}
	if _, ok := r.st.s.rawMaterials[line.RawMaterialID]; !ok {
		return apperror.NotFound("raw material", line.RawMaterialID)
	}
	r.st.s.bomLines[line.ID] = *line
	return nil
}

func (r *RawMaterialRepository) FindBOMLines(_ context.Context, productID string) ([]model.BOMLine, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	out := []model.BOMLine{}
	for _, line := range r.st.s.bomLines {
		if line.ProductID != productID {
			continue
		}
		m, ok := r.st.s.rawMaterials[line.RawMaterialID]
		if !ok {
			continue
		}
		out = append(out, model.BOMLine{
			ProductRawMaterial: line,
			RawMaterialName:    m.Name,
			Unit:               m.Unit,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RawMaterialRepository) FindBatchByID(_ context.Context, id string) (*model.Batch, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()
	return r.st.batchByID(id)
}

func (r *RawMaterialRepository) FindPlanByID(_ context.Context, id string) (*model.Plan, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, ok := r.st.s.plans[id]
	if !ok {
		return nil, nil
	}
	c := clonePlan(p)
	return &c, nil
}
