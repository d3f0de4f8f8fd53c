package handler

import (
	"context"

	"github.com/fekuna/omnipos-production-service/internal/machine"
	"github.com/fekuna/omnipos-production-service/internal/machine/dto"
	"github.com/fekuna/omnipos-production-service/internal/rpc"
	"github.com/fekuna/omnipos-production-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type MachineHandler struct {
	uc     machine.UseCase
	logger logger.ZapLogger
}

func NewMachineHandler(uc machine.UseCase, log logger.ZapLogger) *MachineHandler {
	return &MachineHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *MachineHandler) ServiceName() string {
	return "omnipos.production.v1.MachineService"
}

func (h *MachineHandler) Methods() map[string]rpc.Method {
	return map[string]rpc.Method{
		"CreateMachine":     h.CreateMachine,
		"ListMachines":      h.ListMachines,
		"GetMachine":        h.GetMachine,
		"UpdateMachine":     h.UpdateMachine,
		"DeactivateMachine": h.DeactivateMachine,
	}
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *MachineHandler) CreateMachine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.CreateMachineInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	m, err := h.uc.CreateMachine(ctx, &input)
	if err != nil {
		h.logger.Warn("failed to create machine", zap.Error(err))
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(m)
}

func (h *MachineHandler) ListMachines(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	machines, err := h.uc.ListActive(ctx)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.EncodeList(machines)
}

func (h *MachineHandler) GetMachine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input idRequest
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	m, err := h.uc.GetMachine(ctx, input.ID)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(m)
}

func (h *MachineHandler) UpdateMachine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input dto.UpdateMachineInput
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	m, err := h.uc.UpdateMachine(ctx, &input)
	if err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(m)
}

func (h *MachineHandler) DeactivateMachine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input idRequest
	if err := rpc.Decode(req, &input); err != nil {
		return nil, err
	}

	if err := h.uc.DeactivateMachine(ctx, input.ID); err != nil {
		return nil, rpc.ToStatus(err)
	}
	return rpc.Encode(map[string]any{"ok": true})
}
