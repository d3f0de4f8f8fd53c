package machine

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, m *model.Machine) error
	FindByID(ctx context.Context, id string) (*model.Machine, error)
	// FindActive returns active machines by ascending id.
	FindActive(ctx context.Context) ([]model.Machine, error)
	Update(ctx context.Context, m *model.Machine) error
}
