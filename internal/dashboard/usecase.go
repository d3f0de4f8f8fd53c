package dashboard

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type UseCase interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}
