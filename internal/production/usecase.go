package production

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/model"
)

type UseCase interface {
	// Generate schedules every unplanned batch starting at start, or today
	// when start is nil.
	Generate(ctx context.Context, start *time.Time) ([]model.Plan, error)
	ScheduleForDay(ctx context.Context, day time.Time) ([]model.Plan, error)
	Today(ctx context.Context) ([]model.Plan, error)
	ScheduleForRange(ctx context.Context, start, end time.Time) ([]model.Plan, error)
}

// EventPublisher is satisfied by *broker.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// ScheduleCache holds schedule query results between engine runs.
// *engine.ScheduleCache implements it over Redis.
type ScheduleCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Epoch(ctx context.Context) (int64, error)
	// SetIfCurrent stores value unless an invalidation happened after epoch
	// was read, in which case it returns engine.ErrStaleSchedule.
	SetIfCurrent(ctx context.Context, key string, epoch int64, value []byte) error
	Invalidate(ctx context.Context)
}
