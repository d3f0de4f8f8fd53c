package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-production-service/config"
	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/engine"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/order/dto"
	"github.com/fekuna/omnipos-production-service/internal/production"
	"github.com/fekuna/omnipos-production-service/internal/store/memory"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

var defaultPolicy = config.SchedulerConfig{
	AutoCreateDefaultMachine: true,
	DefaultMachineName:       "Default Line",
	DefaultMachineCapacity:   1000,
	ScheduleCacheTTLSeconds:  300,
}

type recordingPublisher struct {
	messages [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, value []byte) error {
	p.messages = append(p.messages, value)
	return nil
}

func newTestUseCase(t *testing.T, policy config.SchedulerConfig, publisher production.EventPublisher) (*productionUseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	log := logger.NewNop()
	uc := NewProductionUseCase(st.Production(), engine.NewGuard(nil, 0, log), nil, publisher, policy, log).(*productionUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc, st
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDay(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return d
}

func seedMachine(t *testing.T, st *memory.Store, name string, capacity int) model.Machine {
	t.Helper()
	m := model.Machine{BaseModel: model.NewBase(fixedNow), Name: name, CapacityPerDay: capacity, IsActive: true}
	if err := st.Machines().Create(context.Background(), &m); err != nil {
		t.Fatalf("seed machine: %v", err)
	}
	return m
}

// seedBatch stores one order and a batch holding it.
func seedBatch(t *testing.T, st *memory.Store, product string, qty int, delivery string) *model.Batch {
	t.Helper()
	ctx := context.Background()
	o := &model.Order{
		BaseModel:    model.NewBase(fixedNow),
		OrderNumber:  "SO-" + product,
		ProductName:  product,
		Color:        "Red",
		Quantity:     qty,
		DeliveryDate: day(t, delivery),
		Status:       model.OrderStatusPending,
	}
	if err := st.Orders().Create(ctx, o); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	b := &model.Batch{
		BaseModel:     model.NewBase(fixedNow),
		ProductName:   product,
		Color:         "Red",
		TotalQuantity: qty,
		OrderNumbers:  []string{o.OrderNumber},
		OrderIDs:      []string{o.ID},
	}
	if err := st.Consolidation().SaveBatches(ctx, []*model.Batch{b}); err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	return b
}

func TestGenerateSpreadsBatchesAcrossMachinesOnOneDay(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	m1 := seedMachine(t, st, "Line 1", 100)
	m2 := seedMachine(t, st, "Line 2", 100)
	seedBatch(t, st, "A", 10, "2024-03-12")
	seedBatch(t, st, "B", 20, "2024-03-13")

	start := day(t, "2024-03-11")
	plans, err := uc.Generate(ctx, &start)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	for _, p := range plans {
		if !p.PlannedDate.Equal(start) {
			t.Fatalf("expected all plans on %s, got %s", model.FormatDay(start), model.FormatDay(p.PlannedDate))
		}
	}
	if *plans[0].MachineID != m1.ID || *plans[1].MachineID != m2.ID {
		t.Fatalf("expected machines in id order, got %s, %s", *plans[0].MachineID, *plans[1].MachineID)
	}
}

func TestGenerateWrapsToNextDay(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedMachine(t, st, "Line 1", 100)
	seedMachine(t, st, "Line 2", 100)
	for _, p := range []string{"A", "B", "C", "D", "E"} {
		seedBatch(t, st, p, 5, "2024-03-20")
	}

	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []string{"2024-03-10", "2024-03-10", "2024-03-11", "2024-03-11", "2024-03-12"}
	if len(plans) != len(want) {
		t.Fatalf("expected %d plans, got %d", len(want), len(plans))
	}
	slots := map[string]struct{}{}
	for i, p := range plans {
		if got := model.FormatDay(p.PlannedDate); got != want[i] {
			t.Fatalf("plan %d: expected %s, got %s", i, want[i], got)
		}
		slot := model.FormatDay(p.PlannedDate) + "/" + *p.MachineID
		if _, dup := slots[slot]; dup {
			t.Fatalf("machine-day slot %s used twice", slot)
		}
		slots[slot] = struct{}{}
	}
}

func TestGenerateOrdersByEarliestDelivery(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedMachine(t, st, "Line 1", 100)
	late := seedBatch(t, st, "Late", 5, "2024-04-01")
	urgent := seedBatch(t, st, "Urgent", 5, "2024-03-11")

	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if *plans[0].BatchID != urgent.ID || *plans[1].BatchID != late.ID {
		t.Fatalf("expected urgent batch first")
	}
	if !plans[1].PlannedDate.Equal(plans[0].PlannedDate.AddDate(0, 0, 1)) {
		t.Fatalf("single machine must advance one day per batch")
	}
}

func TestGenerateLinksBatchesAndOrders(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedMachine(t, st, "Tiny", 1)
	b := seedBatch(t, st, "A", 500, "2024-03-12")

	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	p := plans[0]
	if p.QuantityPlanned != 500 {
		t.Fatalf("capacity is not enforced; expected 500 planned, got %d", p.QuantityPlanned)
	}
	if p.Status != model.PlanStatusScheduled {
		t.Fatalf("expected scheduled, got %s", p.Status)
	}

	stored, _ := st.Consolidation().FindByID(ctx, b.ID)
	if stored.PlanID == nil || *stored.PlanID != p.ID {
		t.Fatalf("batch not linked to plan")
	}
	orders, _ := st.Orders().FindAll(ctx, &dto.OrderFilters{})
	for _, o := range orders {
		if o.PlanID == nil || *o.PlanID != p.ID {
			t.Fatalf("order %s not linked to plan", o.OrderNumber)
		}
	}

	again, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("a batch must never get a second plan, got %d", len(again))
	}
}

func TestGenerateCreatesDefaultMachine(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedBatch(t, st, "A", 5, "2024-03-12")
	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	machines, _ := st.Machines().FindActive(ctx)
	if len(machines) != 1 {
		t.Fatalf("expected one default machine, got %d", len(machines))
	}
	m := machines[0]
	if m.Name != "Default Line" || m.CapacityPerDay != 1000 {
		t.Fatalf("unexpected default machine %+v", m)
	}
	if *plans[0].MachineID != m.ID {
		t.Fatalf("plan not assigned to default machine")
	}
}

func TestGenerateWithoutMachinesFailsWhenPolicyDisabled(t *testing.T) {
	policy := defaultPolicy
	policy.AutoCreateDefaultMachine = false
	uc, st := newTestUseCase(t, policy, nil)
	ctx := context.Background()

	seedBatch(t, st, "A", 5, "2024-03-12")
	if _, err := uc.Generate(ctx, nil); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	unplanned, _ := st.Production().FindUnplannedBatches(ctx)
	if len(unplanned) != 1 {
		t.Fatalf("failed generation must not plan anything")
	}
}

func TestGenerateWithNoBatchesCreatesNothing(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(plans) != 0 {
		t.Fatalf("expected no plans, got %d", len(plans))
	}
	machines, _ := st.Machines().FindActive(ctx)
	if len(machines) != 0 {
		t.Fatalf("default machine must not be created without batches")
	}
}

func TestGeneratePublishesPlans(t *testing.T) {
	pub := &recordingPublisher{}
	uc, st := newTestUseCase(t, defaultPolicy, pub)
	ctx := context.Background()

	seedMachine(t, st, "Line 1", 100)
	seedBatch(t, st, "A", 5, "2024-03-12")
	if _, err := uc.Generate(ctx, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(pub.messages) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.messages))
	}
	var event struct {
		EventType string       `json:"event_type"`
		Payload   []model.Plan `json:"payload"`
	}
	if err := json.Unmarshal(pub.messages[0], &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.EventType != EventPlansScheduled || len(event.Payload) != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestScheduleQueries(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedMachine(t, st, "Line 1", 100)
	for _, p := range []string{"A", "B", "C"} {
		seedBatch(t, st, p, 5, "2024-03-20")
	}
	if _, err := uc.Generate(ctx, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	today, err := uc.Today(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(today) != 1 || model.FormatDay(today[0].PlannedDate) != "2024-03-10" {
		t.Fatalf("unexpected today schedule %+v", today)
	}

	rangePlans, err := uc.ScheduleForRange(ctx, day(t, "2024-03-11"), day(t, "2024-03-12"))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(rangePlans) != 2 || !rangePlans[0].PlannedDate.Before(rangePlans[1].PlannedDate) {
		t.Fatalf("expected two plans in date order, got %+v", rangePlans)
	}

	if _, err := uc.ScheduleForRange(ctx, day(t, "2024-03-12"), day(t, "2024-03-11")); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}

	empty, err := uc.ScheduleForDay(ctx, day(t, "2024-05-01"))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty schedule, got %d", len(empty))
	}
}

func TestGenerateIgnoresCapacityAndInactiveMachines(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	active := seedMachine(t, st, "Line 1", 1)
	retired := seedMachine(t, st, "Line 2", 1000)
	retired.IsActive = false
	if err := st.Machines().Update(ctx, &retired); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	big := seedBatch(t, st, "Bulk", 500, "2024-03-12")

	plans, err := uc.Generate(ctx, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("oversized batch must take exactly one slot, got %d plans", len(plans))
	}
	p := plans[0]
	if *p.MachineID != active.ID {
		t.Fatalf("expected the active machine, got %s", *p.MachineID)
	}
	if p.QuantityPlanned != big.TotalQuantity {
		t.Fatalf("expected quantity %d, got %d", big.TotalQuantity, p.QuantityPlanned)
	}
	if !p.PlannedDate.Equal(model.Day(fixedNow)) {
		t.Fatalf("expected today, got %s", model.FormatDay(p.PlannedDate))
	}
}

func TestGenerateUsesStartDateForBatchWithoutOrders(t *testing.T) {
	uc, st := newTestUseCase(t, defaultPolicy, nil)
	ctx := context.Background()

	seedMachine(t, st, "Line 1", 100)
	late := seedBatch(t, st, "Late", 5, "2024-03-20")
	early := seedBatch(t, st, "Early", 5, "2024-03-12")
	orphan := &model.Batch{BaseModel: model.NewBase(fixedNow), ProductName: "Orphan", Color: "Red", TotalQuantity: 4}
	if err := st.Consolidation().SaveBatches(ctx, []*model.Batch{orphan}); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	start := day(t, "2024-03-15")
	plans, err := uc.Generate(ctx, &start)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := []string{early.ID, orphan.ID, late.ID}
	if len(plans) != len(want) {
		t.Fatalf("expected %d plans, got %d", len(want), len(plans))
	}
	for i, id := range want {
		if *plans[i].BatchID != id {
			t.Fatalf("plan %d: expected batch %s, got %s", i, id, *plans[i].BatchID)
		}
	}
}

// memoryCache mimics engine.ScheduleCache without Redis.
type memoryCache struct {
	entries map[string][]byte
	epoch   int64
}

func newMemoryCache() *memoryCache { return &memoryCache{entries: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *memoryCache) Epoch(_ context.Context) (int64, error) { return c.epoch, nil }

func (c *memoryCache) SetIfCurrent(_ context.Context, key string, epoch int64, value []byte) error {
	if epoch != c.epoch {
		return engine.ErrStaleSchedule
	}
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context) {
	c.epoch++
	c.entries = map[string][]byte{}
}

// countingRepo counts range reads and runs duringRange inside the next one.
type countingRepo struct {
	production.Repository
	rangeReads  int
	duringRange func()
}

func (r *countingRepo) FindByRange(ctx context.Context, start, end time.Time) ([]model.Plan, error) {
	r.rangeReads++
	plans, err := r.Repository.FindByRange(ctx, start, end)
	if r.duringRange != nil {
		hook := r.duringRange
		r.duringRange = nil
		hook()
	}
	return plans, err
}

func TestScheduleForRangeCache(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	log := logger.NewNop()
	repo := &countingRepo{Repository: st.Production()}
	c := newMemoryCache()
	uc := NewProductionUseCase(repo, engine.NewGuard(nil, 0, log), c, nil, defaultPolicy, log).(*productionUseCase)
	uc.now = func() time.Time { return fixedNow }

	seedMachine(t, st, "Line 1", 100)
	seedBatch(t, st, "A", 5, "2024-03-20")
	if _, err := uc.Generate(ctx, nil); err != nil {
		t.Fatalf("generate: %v", err)
	}

	from, to := day(t, "2024-03-10"), day(t, "2024-03-12")
	first, err := uc.ScheduleForRange(ctx, from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	second, err := uc.ScheduleForRange(ctx, from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if repo.rangeReads != 1 {
		t.Fatalf("second read must be served from cache, got %d store reads", repo.rangeReads)
	}
	if len(first) != 1 || len(second) != 1 || second[0].ID != first[0].ID {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}

	// A schedule committed while a read is in flight must keep that
	// read's result out of the cache.
	seedBatch(t, st, "B", 5, "2024-03-21")
	c.Invalidate(ctx)
	repo.duringRange = func() {
		if _, err := uc.Generate(ctx, nil); err != nil {
			t.Fatalf("generate: %v", err)
		}
	}
	stale, err := uc.ScheduleForRange(ctx, from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(stale) != 1 {
		t.Fatalf("expected the pre-commit view, got %d plans", len(stale))
	}
	if _, ok := c.entries[engine.ScheduleRangeKey(from, to)]; ok {
		t.Fatalf("result read before the commit must not be cached")
	}

	fresh, err := uc.ScheduleForRange(ctx, from, to)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected both plans after the commit, got %d", len(fresh))
	}
}
