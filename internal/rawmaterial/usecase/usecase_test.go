package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial/dto"
	"github.com/fekuna/omnipos-production-service/internal/store/memory"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestUseCase(t *testing.T) (*rawMaterialUseCase, *memory.Store) {
	t.Helper()
	st := memory.New()
	uc := NewRawMaterialUseCase(st.RawMaterials(), logger.NewNop()).(*rawMaterialUseCase)
	uc.now = func() time.Time { return fixedNow }
	return uc, st
}

// seedPlannedBatch stores an order, its batch and a plan for the batch.
func seedPlannedBatch(t *testing.T, st *memory.Store, product string, qty int) (*model.Batch, *model.Plan) {
	t.Helper()
	ctx := context.Background()
	o := &model.Order{
		BaseModel:    model.NewBase(fixedNow),
		OrderNumber:  "SO-" + product,
		ProductName:  product,
		Color:        "Red",
		Quantity:     qty,
		DeliveryDate: model.Day(fixedNow),
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
	batchID := b.ID
	p := &model.Plan{
		BaseModel:       model.NewBase(fixedNow),
		PlannedDate:     model.Day(fixedNow),
		BatchID:         &batchID,
		QuantityPlanned: qty,
		Status:          model.PlanStatusScheduled,
	}
	if err := st.Production().SaveSchedule(ctx, nil, []*model.Plan{p}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return b, p
}

func seedBOM(t *testing.T, uc *rawMaterialUseCase, product string, lines map[string]float64, order []string) {
	t.Helper()
	ctx := context.Background()
	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: product})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	for _, name := range order {
		m, err := uc.CreateRawMaterial(ctx, &dto.CreateRawMaterialInput{Name: name})
		if err != nil {
			t.Fatalf("create raw material: %v", err)
		}
		if _, err := uc.AddProductMaterial(ctx, &dto.AddProductMaterialInput{
			ProductID:       p.ID,
			RawMaterialID:   m.ID,
			QuantityPerUnit: lines[name],
		}); err != nil {
			t.Fatalf("add material: %v", err)
		}
	}
}

func TestRequirementForBatch(t *testing.T) {
	uc, st := newTestUseCase(t)
	ctx := context.Background()

	seedBOM(t, uc, "Widget", map[string]float64{"Plastic": 0.25, "Dye": 0.0125}, []string{"Plastic", "Dye"})
	b, _ := seedPlannedBatch(t, st, "Widget", 10)

	req, err := uc.RequirementForBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("requirement: %v", err)
	}
	if req.TotalQuantity != 10 || req.ProductName != "Widget" {
		t.Fatalf("unexpected header %+v", req)
	}
	if len(req.Requirements) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(req.Requirements))
	}
	plastic, dye := req.Requirements[0], req.Requirements[1]
	if plastic.RawMaterialName != "Plastic" || plastic.TotalQuantity != 2.5 || plastic.Unit != "kg" {
		t.Fatalf("unexpected plastic line %+v", plastic)
	}
	// 0.0125 * 10 = 0.125, rounded half to even.
	if dye.TotalQuantity != 0.12 {
		t.Fatalf("expected 0.12, got %v", dye.TotalQuantity)
	}
	if dye.QuantityPerUnit != 0.0125 {
		t.Fatalf("per-unit coefficient must be reported as stored, got %v", dye.QuantityPerUnit)
	}
}

func TestRequirementForBatchWithoutProduct(t *testing.T) {
	uc, st := newTestUseCase(t)
	ctx := context.Background()

	b, _ := seedPlannedBatch(t, st, "Mystery", 4)
	req, err := uc.RequirementForBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("requirement: %v", err)
	}
	if req.Requirements == nil || len(req.Requirements) != 0 {
		t.Fatalf("expected empty requirements, got %v", req.Requirements)
	}

	if _, err := uc.RequirementForBatch(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequirementForPlansDedupesAndKeepsOrder(t *testing.T) {
	uc, st := newTestUseCase(t)
	ctx := context.Background()

	seedBOM(t, uc, "Widget", map[string]float64{"Plastic": 1}, []string{"Plastic"})
	bA, pA := seedPlannedBatch(t, st, "Widget", 3)
	bB, pB := seedPlannedBatch(t, st, "Gadget", 2)

	unbatched := &model.Plan{
		BaseModel:   model.NewBase(fixedNow),
		PlannedDate: model.Day(fixedNow),
		Status:      model.PlanStatusScheduled,
	}
	if err := st.Production().SaveSchedule(ctx, nil, []*model.Plan{unbatched}); err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	result, err := uc.RequirementForPlans(ctx, []string{pB.ID, "missing", unbatched.ID, pA.ID, pB.ID})
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if result[0].BatchID != bB.ID || result[1].BatchID != bA.ID {
		t.Fatalf("expected first-seen order")
	}
	if result[1].Requirements[0].TotalQuantity != 3 {
		t.Fatalf("unexpected total %v", result[1].Requirements[0].TotalQuantity)
	}

	empty, err := uc.RequirementForPlans(ctx, nil)
	if err != nil {
		t.Fatalf("empty: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v", empty)
	}
}

func TestCatalog(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Widget"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: "Widget"}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
	if _, err := uc.CreateProduct(ctx, &dto.CreateProductInput{Name: " "}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	m, err := uc.CreateRawMaterial(ctx, &dto.CreateRawMaterialInput{Name: "Steel", Unit: "sheet"})
	if err != nil {
		t.Fatalf("create raw material: %v", err)
	}

	if _, err := uc.AddProductMaterial(ctx, &dto.AddProductMaterialInput{ProductID: p.ID, RawMaterialID: m.ID, QuantityPerUnit: 0}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for zero coefficient, got %v", err)
	}
	if _, err := uc.AddProductMaterial(ctx, &dto.AddProductMaterialInput{ProductID: "missing", RawMaterialID: m.ID, QuantityPerUnit: 1}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
	if _, err := uc.AddProductMaterial(ctx, &dto.AddProductMaterialInput{ProductID: p.ID, RawMaterialID: "missing", QuantityPerUnit: 1}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown raw material, got %v", err)
	}

	line, err := uc.AddProductMaterial(ctx, &dto.AddProductMaterialInput{ProductID: p.ID, RawMaterialID: m.ID, QuantityPerUnit: 2})
	if err != nil {
		t.Fatalf("add material: %v", err)
	}
	if line.RawMaterialName != "Steel" || line.Unit != "sheet" {
		t.Fatalf("unexpected line %+v", line)
	}

	products, err := uc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || len(products[0].Materials) != 1 {
		t.Fatalf("expected product with one material, got %+v", products)
	}

	if _, err := uc.ListProductMaterials(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	materials, err := uc.ListRawMaterials(ctx)
	if err != nil || len(materials) != 1 {
		t.Fatalf("expected one raw material, got %v (%v)", materials, err)
	}
}
