package machine

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/machine/dto"
	"github.com/fekuna/omnipos-production-service/internal/model"
)

type UseCase interface {
	CreateMachine(ctx context.Context, input *dto.CreateMachineInput) (*model.Machine, error)
	ListActive(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	UpdateMachine(ctx context.Context, input *dto.UpdateMachineInput) (*model.Machine, error)
	DeactivateMachine(ctx context.Context, id string) error
}
