package consolidation

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type Repository interface {
	// FindPendingUnbatched returns pending orders without a batch, earliest
	// delivery date first.
	FindPendingUnbatched(ctx context.Context) ([]model.Order, error)

	// SaveBatches inserts the batches and links each batch's OrderIDs in one
	// transaction. An order that was linked meanwhile aborts everything with a
	// conflict.
	SaveBatches(ctx context.Context, batches []*model.Batch) error

	FindAll(ctx context.Context) ([]model.Batch, error)
	FindByID(ctx context.Context, id string) (*model.Batch, error)

	// Reset unlinks every order and deletes all plans and batches.
	Reset(ctx context.Context) error
}
