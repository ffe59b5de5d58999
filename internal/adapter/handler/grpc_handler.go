package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/core/service"
)

type GRPCHandler struct {
	commands  *service.CommandService
	inventory *service.InventoryService
}

func NewGRPCHandler(commands *service.CommandService, inventory *service.InventoryService) *GRPCHandler {
	return &GRPCHandler{commands: commands, inventory: inventory}
}

func (h *GRPCHandler) ProcessCommand(ctx context.Context, req *CommandRequest) (*CommandResponse, error) {
	result, err := h.commands.InterpretText(ctx, req.Command, domain.Language(req.Language))
	if err != nil {
		slog.ErrorContext(ctx, "grpc command failed", "error", err)
		if errors.Is(err, service.ErrInvalidLanguage) {
			return &CommandResponse{Success: false, Message: "invalid language parameter"}, nil
		}
		return &CommandResponse{Success: false, Message: "failed to process command"}, nil
	}

	return &CommandResponse{Success: true, Changes: result.Changes}, nil
}

func (h *GRPCHandler) ExecuteChanges(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error) {
	changes := string(req.Changes)
	if changes == "" {
		changes = "null"
	}
	batch, err := service.ExtractChanges(`{"changes":` + changes + `}`)
	if err != nil {
		return &ExecuteResponse{Success: false, Message: "changes must be an array of objects"}, nil
	}

	result, err := h.inventory.ExecuteChanges(ctx, req.RequestID, batch)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			return &ExecuteResponse{Success: false, Message: "duplicate request"}, nil
		}
		slog.ErrorContext(ctx, "grpc execute failed", "error", err)
		return &ExecuteResponse{Success: false, Message: "internal error"}, nil
	}

	return &ExecuteResponse{Success: true, Outcomes: result.Outcomes}, nil
}

func (h *GRPCHandler) ListParts(ctx context.Context, req *ListPartsRequest) (*ListPartsResponse, error) {
	parts, err := h.inventory.ListParts(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "grpc list parts failed", "error", err)
		return &ListPartsResponse{Success: false, Message: "internal error"}, nil
	}
	return &ListPartsResponse{Success: true, Parts: parts}, nil
}
