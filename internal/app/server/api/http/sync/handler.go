package sync

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.fullSyncOp(), h.fullSync)
	huma.Register(api, h.checkpointOp(), h.checkpoint)
	huma.Register(api, h.conflictsOp(), h.conflicts)
	huma.Register(api, h.resolveOp(), h.resolve)
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	response, err := h.service.Push(ctx, input.Body)
	if err != nil {
		return &pushOutput{
			Body: sync.PushResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &pushOutput{
		Body: *response,
	}, nil
}

func (h *Handler) pull(ctx context.Context, input *pullInput) (*pullOutput, error) {
	response, err := h.service.Pull(ctx, input.Body)
	if err != nil {
		return &pullOutput{
			Body: sync.PullResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &pullOutput{
		Body: *response,
	}, nil
}

func (h *Handler) fullSync(ctx context.Context, input *fullSyncInput) (*fullSyncOutput, error) {
	response, err := h.service.FullSync(ctx, input.Body)
	if err != nil {
		return &fullSyncOutput{
			Body: sync.FullSyncResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &fullSyncOutput{
		Body: *response,
	}, nil
}

func (h *Handler) checkpoint(ctx context.Context, input *checkpointInput) (*checkpointOutput, error) {
	response, err := h.service.Checkpoint(ctx, input.DeviceID)
	if err != nil {
		return &checkpointOutput{
			Body: sync.CheckpointResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &checkpointOutput{
		Body: *response,
	}, nil
}

func (h *Handler) conflicts(ctx context.Context, _ *conflictsInput) (*conflictsOutput, error) {
	response, err := h.service.Conflicts(ctx)
	if err != nil {
		return &conflictsOutput{
			Body: sync.ConflictsResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &conflictsOutput{
		Body: *response,
	}, nil
}

func (h *Handler) resolve(ctx context.Context, input *resolveInput) (*resolveOutput, error) {
	response, err := h.service.Resolve(ctx, input.ID, input.Body)
	if err != nil {
		return &resolveOutput{
			Body: sync.ResolveResponse{
				Status: "Error",
				Error:  err.Error(),
			},
		}, nil
	}

	return &resolveOutput{
		Body: *response,
	}, nil
}
