// Package memory keeps the whole production state in process behind one
// lock. Every repository interface has an implementation here; each write
// validates first and mutates after, so a failed write leaves no trace.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type state struct {
	orders       map[string]model.Order
	batches      map[string]model.Batch
	plans        map[string]model.Plan
	machines     map[string]model.Machine
	products     map[string]model.Product
	rawMaterials map[string]model.RawMaterial
	bomLines     map[string]model.ProductRawMaterial
}

// Store is the shared state. Use the accessors to get per-domain repositories.
type Store struct {
	mu sync.RWMutex
	s  state
}

func New() *Store {
	return &Store{s: state{
		orders:       map[string]model.Order{},
		batches:      map[string]model.Batch{},
		plans:        map[string]model.Plan{},
		machines:     map[string]model.Machine{},
		products:     map[string]model.Product{},
		rawMaterials: map[string]model.RawMaterial{},
		bomLines:     map[string]model.ProductRawMaterial{},
	}}
}

func (st *Store) Orders() *OrderRepository { return &OrderRepository{st: st} }
func (st *Store) Consolidation() *ConsolidationRepository { return &ConsolidationRepository{st: st} }
func (st *Store) Production() *ProductionRepository { return &ProductionRepository{st: st} }
func (st *Store) Machines() *MachineRepository { return &MachineRepository{st: st} }
func (st *Store) RawMaterials() *RawMaterialRepository { return &RawMaterialRepository{st: st} }
func (st *Store) Dashboard() *DashboardRepository { return &DashboardRepository{st: st} }

func strPtr(s string) *string {
	return &s
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	return strPtr(*p)
}

func cloneOrder(o model.Order) model.Order {
	o.BatchID = cloneStr(o.BatchID)
	o.PlanID = cloneStr(o.PlanID)
	o.Notes = cloneStr(o.Notes)
	return o
}

func cloneBatch(b model.Batch) model.Batch {
	b.OrderNumbers = append([]string{}, b.OrderNumbers...)
	b.PlanID = cloneStr(b.PlanID)
	b.OrderIDs = nil
	return b
}

func clonePlan(p model.Plan) model.Plan {
	p.BatchID = cloneStr(p.BatchID)
	p.MachineID = cloneStr(p.MachineID)
	return p
}

// sortOrders orders by delivery date, then id.
func sortOrders(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].DeliveryDate.Equal(orders[j].DeliveryDate) {
			return orders[i].DeliveryDate.Before(orders[j].DeliveryDate)
		}
		return orders[i].ID < orders[j].ID
	})
}

// sortPlans orders by date, then machine id with unassigned plans last, then id.
func sortPlans(plans []model.Plan) {
	sort.Slice(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if !a.PlannedDate.Equal(b.PlannedDate) {
			return a.PlannedDate.Before(b.PlannedDate)
		}
		switch {
		case a.MachineID == nil && b.MachineID != nil:
			return false
		case a.MachineID != nil && b.MachineID == nil:
			return true
		case a.MachineID != nil && b.MachineID != nil && *a.MachineID != *b.MachineID:
			return *a.MachineID < *b.MachineID
		}
		return a.ID < b.ID
	})
}

func sameDay(a, b time.Time) bool {
	return model.Day(a).Equal(model.Day(b))
}

func (st *Store) collectOrders(keep func(o *model.Order) bool) []model.Order {
	out := []model.Order{}
	for _, o := range st.s.orders {
		if keep(&o) {
			out = append(out, cloneOrder(o))
		}
	}
	sortOrders(out)
	return out
}

func (st *Store) plansWhere(keep func(p *model.Plan) bool) []model.Plan {
	out := []model.Plan{}
	for _, p := range st.s.plans {
		if keep(&p) {
			out = append(out, clonePlan(p))
		}
	}
	sortPlans(out)
	return out
}

func (st *Store) batchByID(id string) (*model.Batch, error) {
	b, ok := st.s.batches[id]
	if !ok {
		return nil, nil
	}
	c := cloneBatch(b)
	return &c, nil
}
