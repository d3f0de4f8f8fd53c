package production

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type Repository interface {
	// FindUnplannedBatches returns batches without a plan in creation order.
	FindUnplannedBatches(ctx context.Context) ([]model.Batch, error)

	// EarliestDeliveryByBatch maps batch id to the earliest delivery date of
	// its linked orders. Batches with no linked order are absent.
	EarliestDeliveryByBatch(ctx context.Context, batchIDs []string) (map[string]time.Time, error)

	// FindActiveMachines returns active machines by ascending id.
	FindActiveMachines(ctx context.Context) ([]model.Machine, error)

	// SaveSchedule persists the plans, links each plan's batch and the
	// batch's orders, and inserts defaultMachine when it is not nil. All in
	// one transaction; a batch planned meanwhile aborts with a conflict.
	SaveSchedule(ctx context.Context, defaultMachine *model.Machine, plans []*model.Plan) error

	FindByDate(ctx context.Context, day time.Time) ([]model.Plan, error)
	FindByRange(ctx context.Context, start, end time.Time) ([]model.Plan, error)
}
