package handler

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/production"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type ProductionHandler struct {
	uc     production.UseCase
	logger logger.ZapLogger
}

func NewProductionHandler(uc production.UseCase, log logger.ZapLogger) *ProductionHandler {
	return &ProductionHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductionHandler) ServiceName() string {
	return "omnipos.production.v1.ProductionService"
}

func (h *ProductionHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"GenerateSchedule": h.GenerateSchedule,
		"GetSchedule":      h.GetSchedule,
		"GetTodaySchedule": h.GetTodaySchedule,
		"GetScheduleRange": h.GetScheduleRange,
	}
}

func (h *ProductionHandler) GenerateSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		StartDate string `json:"start_date"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	var start *time.Time
	if strings.TrimSpace(input.StartDate) != "" {
		d, err := parseDate("start_date", input.StartDate)
		if err != nil {
			return nil, rpc.ToStatus(err)
		}
		start = &d
	}

	plans, err := h.uc.Generate(ctx, start)
	if err != nil {
		h.logger.Error("schedule generation failed", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapPlans(plans))
}

func (h *ProductionHandler) GetSchedule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		Date string `json:"date"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}
	day, err := parseDate("date", input.Date)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}

	plans, err := h.uc.ScheduleForDay(ctx, day)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapPlans(plans))
}

func (h *ProductionHandler) GetTodaySchedule(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	plans, err := h.uc.Today(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapPlans(plans))
}

func (h *ProductionHandler) GetScheduleRange(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}
	start, err := parseDate("start_date", input.StartDate)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	end, err := parseDate("end_date", input.EndDate)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}

	plans, err := h.uc.ScheduleForRange(ctx, start, end)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(mapPlans(plans))
}

func parseDate(field, raw string) (time.Time, error) {
	d, err := model.ParseDay(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperror.Validation("%s must be YYYY-MM-DD, got %q", field, raw)
	}
	return d, nil
}

func mapPlans(plans []model.Plan) []map[string]any {
	out := make([]map[string]any, len(plans))
	for i := range plans {
		out[i] = MapPlan(&plans[i])
	}
	return out
}

// MapPlan renders a plan for responses. Shared with the dashboard handler.
func MapPlan(p *model.Plan) map[string]any {
	return map[string]any{
		"id":                    p.ID,
		"planned_date":          model.FormatDay(p.PlannedDate),
		"consolidated_batch_id": p.BatchID,
		"quantity_planned":      p.QuantityPlanned,
		"status":                p.Status,
		"machine_id":            p.MachineID,
		"created_at":            p.CreatedAt,
	}
}
