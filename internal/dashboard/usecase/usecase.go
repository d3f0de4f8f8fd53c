package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/dashboard"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
)

const (
	pendingLimit = 50
	delayedLimit = 20
)

type dashboardUseCase struct {
	repo   dashboard.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewDashboardUseCase(repo dashboard.Repository, log logger.ZapLogger) dashboard.UseCase {
	return &dashboardUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *dashboardUseCase) Stats(ctx context.Context) (*model.DashboardStats, error) {
	today := model.Day(uc.now())

	todayPlan, err := uc.repo.FindPlanDetailsByDate(ctx, today)
	if err != nil {
		return nil, err
	}
	pendingCount, err := uc.repo.CountByStatus(ctx, model.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	pending, err := uc.repo.FindByStatus(ctx, model.OrderStatusPending, pendingLimit)
	if err != nil {
		return nil, err
	}
	completedCount, err := uc.repo.CountByStatus(ctx, model.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	delayedCount, err := uc.repo.CountDelayed(ctx, today)
	if err != nil {
		return nil, err
	}
	delayed, err := uc.repo.FindDelayed(ctx, today, delayedLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		TodayPlanCount:       len(todayPlan),
		PendingOrdersCount:   pendingCount,
		CompletedOrdersCount: completedCount,
		DelayedOrdersCount:   delayedCount,
		TodayPlan:            todayPlan,
		PendingOrders:        pending,
		DelayedOrders:        delayed,
	}, nil
}
