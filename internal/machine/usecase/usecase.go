package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-production-service/internal/apperror"
	"github.com/fekuna/omnipos-production-service/internal/machine"
	"github.com/fekuna/omnipos-production-service/internal/machine/dto"
	"github.com/fekuna/omnipos-production-service/internal/model"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
)

type machineUseCase struct {
	repo   machine.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewMachineUseCase(repo machine.Repository, log logger.ZapLogger) machine.UseCase {
	return &machineUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *machineUseCase) CreateMachine(ctx context.Context, input *dto.CreateMachineInput) (*model.Machine, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	if input.CapacityPerDay <= 0 {
		return nil, apperror.Validation("capacity_per_day must be positive, got %d", input.CapacityPerDay)
	}

	m := &model.Machine{
		BaseModel:      model.NewBase(uc.now()),
		Name:           name,
		CapacityPerDay: input.CapacityPerDay,
		IsActive:       true,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	uc.logger.Info("machine created", zap.String("machine_id", m.ID), zap.String("name", m.Name))
	return m, nil
}

func (uc *machineUseCase) ListActive(ctx context.Context) ([]model.Machine, error) {
	return uc.repo.FindActive(ctx)
}

func (uc *machineUseCase) GetMachine(ctx context.Context, id string) (*model.Machine, error) {
	m, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperror.NotFound("machine", id)
	}
	return m, nil
}

func (uc *machineUseCase) UpdateMachine(ctx context.Context, input *dto.UpdateMachineInput) (*model.Machine, error) {
	m, err := uc.GetMachine(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be blank")
		}
		m.Name = name
	}
	if input.CapacityPerDay != nil {
		if *input.CapacityPerDay <= 0 {
			return nil, apperror.Validation("capacity_per_day must be positive, got %d", *input.CapacityPerDay)
		}
		m.CapacityPerDay = *input.CapacityPerDay
	}
	if input.IsActive != nil {
		m.IsActive = *input.IsActive
	}
	m.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeactivateMachine hides the machine from scheduling. Existing plans keep
// referencing it.
func (uc *machineUseCase) DeactivateMachine(ctx context.Context, id string) error {
	m, err := uc.GetMachine(ctx, id)
	if err != nil {
		return err
	}
	if !m.IsActive {
		return nil
	}
	m.IsActive = false
	m.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return err
	}
	uc.logger.Info("machine deactivated", zap.String("machine_id", m.ID))
	return nil
}
