package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

var now = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func seedOrder(t *testing.T, st *Store, number string) *model.Order {
	t.Helper()
	o := &model.Order{
		BaseModel:    model.NewBase(now),
		OrderNumber:  number,
		ProductName:  "Widget",
		Color:        "Red",
		Quantity:     2,
		DeliveryDate: now,
		Status:       model.OrderStatusPending,
	}
	if err := st.Orders().Create(context.Background(), o); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return o
}

func TestSaveBatchesIsAllOrNothing(t *testing.T) {
	st := New()
	ctx := context.Background()
	a := seedOrder(t, st, "SO-1")
	b := seedOrder(t, st, "SO-2")

	first := &model.Batch{BaseModel: model.NewBase(now), ProductName: "Widget", Color: "Red", TotalQuantity: 2, OrderIDs: []string{a.ID}}
	if err := st.Consolidation().SaveBatches(ctx, []*model.Batch{first}); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := &model.Batch{BaseModel: model.NewBase(now), ProductName: "Widget", Color: "Blue", TotalQuantity: 2, OrderIDs: []string{b.ID}}
	stale := &model.Batch{BaseModel: model.NewBase(now), ProductName: "Widget", Color: "Red", TotalQuantity: 2, OrderIDs: []string{a.ID}}
	err := st.Consolidation().SaveBatches(ctx, []*model.Batch{fresh, stale})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	batches, _ := st.Consolidation().FindAll(ctx)
	if len(batches) != 1 {
		t.Fatalf("failed save must not leave batches behind, got %d", len(batches))
	}
	untouched, _ := st.Orders().FindByID(ctx, b.ID)
	if untouched.BatchID != nil {
		t.Fatalf("failed save must not link orders")
	}
}

func TestSaveScheduleRejectsPlannedBatch(t *testing.T) {
	st := New()
	ctx := context.Background()
	o := seedOrder(t, st, "SO-1")
	batch := &model.Batch{BaseModel: model.NewBase(now), ProductName: "Widget", Color: "Red", TotalQuantity: 2, OrderIDs: []string{o.ID}}
	if err := st.Consolidation().SaveBatches(ctx, []*model.Batch{batch}); err != nil {
		t.Fatalf("save batch: %v", err)
	}

	batchID := batch.ID
	plan := func() *model.Plan {
		return &model.Plan{BaseModel: model.NewBase(now), PlannedDate: now, BatchID: &batchID, QuantityPlanned: 2, Status: model.PlanStatusScheduled}
	}
	if err := st.Production().SaveSchedule(ctx, nil, []*model.Plan{plan()}); err != nil {
		t.Fatalf("save schedule: %v", err)
	}

	machine := &model.Machine{BaseModel: model.NewBase(now), Name: "Default Line", CapacityPerDay: 1000, IsActive: true}
	if err := st.Production().SaveSchedule(ctx, machine, []*model.Plan{plan()}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	machines, _ := st.Machines().FindActive(ctx)
	if len(machines) != 0 {
		t.Fatalf("default machine must roll back with the plans")
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	st := New()
	ctx := context.Background()
	o := seedOrder(t, st, "SO-1")
	batch := &model.Batch{BaseModel: model.NewBase(now), ProductName: "Widget", Color: "Red", TotalQuantity: 2, OrderNumbers: []string{"SO-1"}, OrderIDs: []string{o.ID}}
	if err := st.Consolidation().SaveBatches(ctx, []*model.Batch{batch}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := st.Consolidation().FindByID(ctx, batch.ID)
	got.OrderNumbers[0] = "tampered"
	again, _ := st.Consolidation().FindByID(ctx, batch.ID)
	if again.OrderNumbers[0] != "SO-1" {
		t.Fatalf("caller mutation leaked into the store")
	}
}
