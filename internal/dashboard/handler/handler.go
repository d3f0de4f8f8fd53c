package handler

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/dashboard"
	"github.com/fekuna/omnipos-production-service/internal/model"
	orderH "github.com/fekuna/omnipos-production-service/internal/order/handler"
	prodH "github.com/fekuna/omnipos-production-service/internal/production/handler"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type DashboardHandler struct {
	uc     dashboard.UseCase
	logger logger.ZapLogger
}

func NewDashboardHandler(uc dashboard.UseCase, log logger.ZapLogger) *DashboardHandler {
	return &DashboardHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DashboardHandler) ServiceName() string {
	return "omnipos.production.v1.DashboardService"
}

func (h *DashboardHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"GetStats": h.GetStats,
	}
}

func (h *DashboardHandler) GetStats(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	stats, err := h.uc.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}

	todayPlan := make([]map[string]any, len(stats.TodayPlan))
	for i := range stats.TodayPlan {
		d := &stats.TodayPlan[i]
		view := prodH.MapPlan(&d.Plan)
		view["product_name"] = d.ProductName
		view["color"] = d.Color
		todayPlan[i] = view
	}

	return rpc.Encode(map[string]any{
		"today_plan_count":       stats.TodayPlanCount,
		"pending_orders_count":   stats.PendingOrdersCount,
		"completed_orders_count": stats.CompletedOrdersCount,
		"delayed_orders_count":   stats.DelayedOrdersCount,
		"today_plan":             todayPlan,
		"pending_orders":         mapOrders(stats.PendingOrders),
		"delayed_orders":         mapOrders(stats.DelayedOrders),
	})
}

func mapOrders(orders []model.Order) []map[string]any {
	out := make([]map[string]any, len(orders))
	for i := range orders {
		out[i] = orderH.MapOrder(&orders[i])
	}
	return out
}
