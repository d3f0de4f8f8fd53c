package consolidation

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type UseCase interface {
	Consolidate(ctx context.Context) ([]model.Batch, error)
	Reset(ctx context.Context) error
	ListBatches(ctx context.Context) ([]model.Batch, error)
	GetBatch(ctx context.Context, id string) (*model.Batch, error)
}
