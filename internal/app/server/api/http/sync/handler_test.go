package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/sync"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Push(ctx context.Context, req sync.PushRequest) (*sync.PushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.PushResponse), args.Error(1)
}

func (m *MockService) Pull(ctx context.Context, req sync.PullRequest) (*sync.PullResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.PullResponse), args.Error(1)
}

func (m *MockService) FullSync(ctx context.Context, req sync.FullSyncRequest) (*sync.FullSyncResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.FullSyncResponse), args.Error(1)
}

func (m *MockService) Checkpoint(ctx context.Context, deviceID string) (*sync.CheckpointResponse, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.CheckpointResponse), args.Error(1)
}

func (m *MockService) Conflicts(ctx context.Context) (*sync.ConflictsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ConflictsResponse), args.Error(1)
}

func (m *MockService) Resolve(ctx context.Context, conflictID string, req sync.ResolveRequest) (*sync.ResolveResponse, error) {
	args := m.Called(ctx, conflictID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ResolveResponse), args.Error(1)
}

func newTestHandler(service sync.Servicer) *Handler {
	return NewHandler(service, slog.Default(), huma.Middlewares{})
}

func TestHandler_push(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	req := sync.PushRequest{DeviceID: "dev-1"}
	mockService.On("Push", mock.Anything, req).Return(&sync.PushResponse{
		Status:          "Ok",
		Results:         []sync.Result{},
		ServerTimestamp: time.Now(),
	}, nil)

	output, err := handler.push(context.Background(), &pushInput{Body: req})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)

	mockService.AssertExpectations(t)
}

func TestHandler_push_ServiceErrorBecomesEnvelope(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	req := sync.PushRequest{}
	mockService.On("Push", mock.Anything, req).Return(nil, sync.ErrDeviceRequired)

	output, err := handler.push(context.Background(), &pushInput{Body: req})
	assert.NoError(t, err)
	assert.Equal(t, "Error", output.Body.Status)
	assert.Equal(t, sync.ErrDeviceRequired.Error(), output.Body.Error)
}

func TestHandler_pull(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	req := sync.PullRequest{DeviceID: "dev-1"}
	mockService.On("Pull", mock.Anything, req).Return(&sync.PullResponse{
		Status:  "Ok",
		Changes: []sync.PulledChange{},
		HasMore: false,
	}, nil)

	output, err := handler.pull(context.Background(), &pullInput{Body: req})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)
	assert.False(t, output.Body.HasMore)
}

func TestHandler_checkpoint(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	cpTime := time.Now().Add(-time.Hour)
	mockService.On("Checkpoint", mock.Anything, "dev-1").Return(&sync.CheckpointResponse{
		Status:     "Ok",
		DeviceID:   "dev-1",
		LastSyncAt: cpTime,
	}, nil)

	output, err := handler.checkpoint(context.Background(), &checkpointInput{DeviceID: "dev-1"})
	assert.NoError(t, err)
	assert.Equal(t, cpTime, output.Body.LastSyncAt)
}

func TestHandler_resolve(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	req := sync.ResolveRequest{Resolution: sync.ResolutionKeepServer}
	mockService.On("Resolve", mock.Anything, "q-1", req).Return(&sync.ResolveResponse{
		Status:  "Ok",
		Message: "Conflict resolved successfully",
	}, nil)

	output, err := handler.resolve(context.Background(), &resolveInput{ID: "q-1", Body: req})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", output.Body.Status)
}

func TestHandler_resolve_NotFound(t *testing.T) {
	mockService := new(MockService)
	handler := newTestHandler(mockService)

	req := sync.ResolveRequest{Resolution: sync.ResolutionKeepServer}
	mockService.On("Resolve", mock.Anything, "missing", req).Return(nil, errors.New("conflict not found"))

	output, err := handler.resolve(context.Background(), &resolveInput{ID: "missing", Body: req})
	assert.NoError(t, err)
	assert.Equal(t, "Error", output.Body.Status)
	assert.Contains(t, output.Body.Error, "not found")
}
