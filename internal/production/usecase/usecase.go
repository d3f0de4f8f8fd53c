package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/fekuna/omnipos-production-service/config"
	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/engine"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/internal/production"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventPlansScheduled = "ProductionPlansScheduled"

type productionUseCase struct {
	repo      production.Repository
	guard     *engine.Guard
	cache     production.ScheduleCache
	publisher production.EventPublisher
	policy    config.SchedulerConfig
	logger    logger.ZapLogger
	now       func() time.Time
}

// NewProductionUseCase wires the scheduler. cache and publisher may be nil.
func NewProductionUseCase(
	repo production.Repository,
	guard *engine.Guard,
	cache production.ScheduleCache,
	publisher production.EventPublisher,
	policy config.SchedulerConfig,
	log logger.ZapLogger,
) production.UseCase {
	return &productionUseCase{
		repo:      repo,
		guard:     guard,
		cache:     cache,
		publisher: publisher,
		policy:    policy,
		logger:    log,
		now:       time.Now,
	}
}

type candidate struct {
	batch    *model.Batch
	priority time.Time
}

// Generate assigns each unplanned batch, most urgent first, to the next
// active machine in id order. When the rotation wraps the day advances by
// one, so every machine gets at most one batch per day. Machine capacity is
// informational and not checked.
func (uc *productionUseCase) Generate(ctx context.Context, start *time.Time) ([]model.Plan, error) {
	startDay := model.Day(uc.now())
	if start != nil {
		startDay = model.Day(*start)
	}

	var plans []*model.Plan
	err := uc.guard.Do(ctx, "generate", func(ctx context.Context) error {
		batches, err := uc.repo.FindUnplannedBatches(ctx)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			return nil
		}

		ids := make([]string, len(batches))
		for i := range batches {
			ids[i] = batches[i].ID
		}
		earliest, err := uc.repo.EarliestDeliveryByBatch(ctx, ids)
		if err != nil {
			return err
		}

		candidates := make([]candidate, len(batches))
		for i := range batches {
			priority, ok := earliest[batches[i].ID]
			if !ok {
				priority = startDay
			}
			candidates[i] = candidate{batch: &batches[i], priority: priority}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].priority.Before(candidates[j].priority)
		})

		machines, err := uc.repo.FindActiveMachines(ctx)
		if err != nil {
			return err
		}
		var defaultMachine *model.Machine
		if len(machines) == 0 {
			if !uc.policy.AutoCreateDefaultMachine {
				return apperror.Validation("no active machine to schedule %d batches on", len(batches))
			}
			defaultMachine = &model.Machine{
				BaseModel:      model.NewBase(uc.now()),
				Name:           uc.policy.DefaultMachineName,
				CapacityPerDay: uc.policy.DefaultMachineCapacity,
				IsActive:       true,
			}
			machines = []model.Machine{*defaultMachine}
			uc.logger.Warn("no active machine, creating default line",
				zap.String("machine_id", defaultMachine.ID),
				zap.String("name", defaultMachine.Name),
			)
		}

		plans = assign(candidates, machines, startDay, uc.now())
		return uc.repo.SaveSchedule(ctx, defaultMachine, plans)
	})
	if err != nil {
		return nil, err
	}

	result := make([]model.Plan, len(plans))
	for i, p := range plans {
		result[i] = *p
	}
	if len(result) == 0 {
		return result, nil
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx)
	}
	uc.publish(ctx, result)
	uc.logger.Info("production plans generated",
		zap.Int("plans", len(result)),
		zap.String("start_date", model.FormatDay(startDay)),
	)
	return result, nil
}

func assign(candidates []candidate, machines []model.Machine, startDay, now time.Time) []*model.Plan {
	plans := make([]*model.Plan, len(candidates))
	for i, c := range candidates {
		machineID := machines[i%len(machines)].ID
		batchID := c.batch.ID
		plans[i] = &model.Plan{
			BaseModel:       model.NewBase(now),
			PlannedDate:     startDay.AddDate(0, 0, i/len(machines)),
			BatchID:         &batchID,
			QuantityPlanned: c.batch.TotalQuantity,
			Status:          model.PlanStatusScheduled,
			MachineID:       &machineID,
		}
	}
	return plans
}

type plansScheduledEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   []model.Plan `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

// publish announces committed plans. Failures are logged; the schedule
// stays committed.
func (uc *productionUseCase) publish(ctx context.Context, plans []model.Plan) {
	if uc.publisher == nil {
		return
	}
	event := plansScheduledEvent{
		EventID:   uuid.New().String(),
		EventType: EventPlansScheduled,
		Payload:   plans,
		Timestamp: uc.now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal plans event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, event.EventID, data); err != nil {
		uc.logger.Error("failed to publish plans event", zap.String("event_id", event.EventID), zap.Error(err))
	}
}

func (uc *productionUseCase) ScheduleForDay(ctx context.Context, day time.Time) ([]model.Plan, error) {
	return uc.repo.FindByDate(ctx, model.Day(day))
}

func (uc *productionUseCase) Today(ctx context.Context) ([]model.Plan, error) {
	return uc.ScheduleForDay(ctx, uc.now())
}

func (uc *productionUseCase) ScheduleForRange(ctx context.Context, start, end time.Time) ([]model.Plan, error) {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return nil, apperror.Validation("start date %s is after end date %s", model.FormatDay(start), model.FormatDay(end))
	}

	key := engine.ScheduleRangeKey(start, end)
	cacheable := false
	var epoch int64
	if uc.cache != nil {
		if val, ok := uc.cache.Get(ctx, key); ok {
			var cached []model.Plan
			if err := json.Unmarshal(val, &cached); err == nil {
				return cached, nil
			}
		}
		// The epoch is taken before the query so a schedule committed
		// meanwhile keeps the result out of the cache.
		var err error
		epoch, err = uc.cache.Epoch(ctx)
		cacheable = err == nil
	}

	plans, err := uc.repo.FindByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if data, err := json.Marshal(plans); err == nil {
			err := uc.cache.SetIfCurrent(ctx, key, epoch, data)
			switch {
			case errors.Is(err, engine.ErrStaleSchedule):
				uc.logger.Debug("schedule changed during range read, not caching", zap.String("key", key))
			case err != nil:
				uc.logger.Warn("failed to cache schedule range", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return plans, nil
}
