package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"marketsync/internal/app/server/api/http/middleware/auth"
	"marketsync/internal/domain/catalog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveQueueRecord(ctx context.Context, rec *QueueRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) GetQueueRecord(ctx context.Context, businessID int, id string) (*QueueRecord, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*QueueRecord), args.Error(1)
}

func (m *MockRepository) ListConflicts(ctx context.Context, businessID int) ([]QueueRecord, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]QueueRecord), args.Error(1)
}

func (m *MockRepository) MarkResolved(ctx context.Context, businessID int, id string, resolution Resolution, resolvedAt time.Time) error {
	args := m.Called(ctx, businessID, id, resolution, resolvedAt)
	return args.Error(0)
}

func (m *MockRepository) CompletedDeletesSince(ctx context.Context, businessID int, kinds []catalog.Kind, since time.Time) ([]QueueRecord, error) {
	args := m.Called(ctx, businessID, kinds, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]QueueRecord), args.Error(1)
}

func (m *MockRepository) PruneCompletedDeletes(ctx context.Context, businessID int, before time.Time) (int64, error) {
	args := m.Called(ctx, businessID, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetCheckpoint(ctx context.Context, userID, businessID int, deviceID string) (*Checkpoint, error) {
	args := m.Called(ctx, userID, businessID, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Checkpoint), args.Error(1)
}

func (m *MockRepository) AdvanceCheckpoint(ctx context.Context, cp *Checkpoint) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

// MockStore is a mock implementation of the catalog.Store interface for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertProduct(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockStore) UpdateProduct(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	args := m.Called(ctx, businessID, id, patch, claimed, appliedAt)
	return args.Error(0)
}

func (m *MockStore) SoftDeleteProduct(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error {
	args := m.Called(ctx, businessID, id, claimed, appliedAt)
	return args.Error(0)
}

func (m *MockStore) GetProduct(ctx context.Context, businessID int, id string) (*catalog.Product, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockStore) ListProducts(ctx context.Context, businessID int, includeDeleted bool) ([]catalog.Product, error) {
	args := m.Called(ctx, businessID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockStore) ProductsSince(ctx context.Context, businessID int, since time.Time, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, businessID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockStore) UpsertCategory(ctx context.Context, c *catalog.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockStore) UpdateCategory(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	args := m.Called(ctx, businessID, id, patch, claimed, appliedAt)
	return args.Error(0)
}

func (m *MockStore) SoftDeleteCategory(ctx context.Context, businessID int, id string, claimed, appliedAt time.Time) error {
	args := m.Called(ctx, businessID, id, claimed, appliedAt)
	return args.Error(0)
}

func (m *MockStore) GetCategory(ctx context.Context, businessID int, id string) (*catalog.Category, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockStore) ListCategories(ctx context.Context, businessID int, includeDeleted bool) ([]catalog.Category, error) {
	args := m.Called(ctx, businessID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockStore) CategoriesSince(ctx context.Context, businessID int, since time.Time, limit int) ([]catalog.Category, error) {
	args := m.Called(ctx, businessID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockStore) UpsertImage(ctx context.Context, img *catalog.Image) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

func (m *MockStore) UpdateImage(ctx context.Context, businessID int, id string, patch map[string]any, claimed, appliedAt time.Time) error {
	args := m.Called(ctx, businessID, id, patch, claimed, appliedAt)
	return args.Error(0)
}

func (m *MockStore) DeleteImage(ctx context.Context, businessID int, id string) error {
	args := m.Called(ctx, businessID, id)
	return args.Error(0)
}

func (m *MockStore) GetImage(ctx context.Context, businessID int, id string) (*catalog.Image, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Image), args.Error(1)
}

func (m *MockStore) UpdatedAt(ctx context.Context, kind catalog.Kind, businessID int, id string) (time.Time, bool, error) {
	args := m.Called(ctx, kind, businessID, id)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockStore) Snapshot(ctx context.Context, kind catalog.Kind, businessID int, id string) (json.RawMessage, error) {
	args := m.Called(ctx, kind, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func identityContext(userID, businessID int) context.Context {
	return auth.WithIdentity(context.Background(), userID, businessID)
}

func newTestService(repo Repository, store catalog.Store, cfg *ServiceConfig) *Service {
	return NewService(repo, store, slog.Default(), cfg)
}

func TestService_Push_AppliesCreate(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	payload := json.RawMessage(`{"name":"Coffee","price":35000,"quantity":10}`)
	req := PushRequest{
		DeviceID: "dev-1",
		Changes: []Change{
			{
				EntityType:      catalog.KindProduct,
				EntityID:        "p-1",
				SyncID:          "sync-1",
				Operation:       OpCreate,
				Payload:         payload,
				ClientTimestamp: time.Now().Add(-time.Minute),
			},
		},
	}

	// Entity does not exist yet, so no conflict
	mockStore.On("UpdatedAt", mock.Anything, catalog.KindProduct, 42, "p-1").Return(time.Time{}, false, nil)
	mockStore.On("UpsertProduct", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == "p-1" && p.BusinessID == 42 && p.Name == "Coffee" && !p.Deleted
	})).Return(nil)
	mockRepo.On("SaveQueueRecord", mock.Anything, mock.MatchedBy(func(rec *QueueRecord) bool {
		return rec.Status == StatusCompleted && rec.EntityID == "p-1" && rec.SyncID == "sync-1"
	})).Return(nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.MatchedBy(func(cp *Checkpoint) bool {
		return cp.UserID == 7 && cp.BusinessID == 42 && cp.DeviceID == "dev-1" && cp.EntityType == CheckpointAll
	})).Return(nil)

	resp, err := service.Push(identityContext(7, 42), req)
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)
	assert.Len(t, resp.Results, 1)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "sync-1", resp.Results[0].SyncID)
	assert.Empty(t, resp.Results[0].Error)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Push_ConflictDetected(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	clientTS := time.Now().Add(-time.Hour)
	serverTS := time.Now().Add(-time.Minute)
	snapshot := json.RawMessage(`{"id":"p-1","name":"Server version"}`)

	req := PushRequest{
		DeviceID: "dev-1",
		Changes: []Change{
			{
				EntityType:      catalog.KindProduct,
				EntityID:        "p-1",
				SyncID:          "sync-1",
				Operation:       OpUpdate,
				Payload:         json.RawMessage(`{"name":"Client version"}`),
				ClientTimestamp: clientTS,
			},
		},
	}

	// Server copy is strictly newer than the client claims
	mockStore.On("UpdatedAt", mock.Anything, catalog.KindProduct, 42, "p-1").Return(serverTS, true, nil)
	mockStore.On("Snapshot", mock.Anything, catalog.KindProduct, 42, "p-1").Return(snapshot, nil)
	mockRepo.On("SaveQueueRecord", mock.Anything, mock.MatchedBy(func(rec *QueueRecord) bool {
		return rec.Status == StatusConflict && rec.EntityID == "p-1"
	})).Return(nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Push(identityContext(7, 42), req)
	assert.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, "Conflict detected", resp.Results[0].Error)
	assert.Equal(t, snapshot, resp.Results[0].ConflictData)

	// The catalog must not have been touched
	mockStore.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Push_EqualTimestampIsNotConflict(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	ts := time.Now().Add(-time.Minute).Truncate(time.Millisecond)

	req := PushRequest{
		DeviceID: "dev-1",
		Changes: []Change{
			{
				EntityType:      catalog.KindProduct,
				EntityID:        "p-1",
				Operation:       OpUpdate,
				Payload:         json.RawMessage(`{"quantity":5}`),
				ClientTimestamp: ts,
			},
		},
	}

	mockStore.On("UpdatedAt", mock.Anything, catalog.KindProduct, 42, "p-1").Return(ts, true, nil)
	mockStore.On("UpdateProduct", mock.Anything, 42, "p-1", mock.Anything, ts, mock.Anything).Return(nil)
	mockRepo.On("SaveQueueRecord", mock.Anything, mock.MatchedBy(func(rec *QueueRecord) bool {
		return rec.Status == StatusCompleted
	})).Return(nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Push(identityContext(7, 42), req)
	assert.NoError(t, err)
	assert.True(t, resp.Results[0].Success)

	mockStore.AssertExpectations(t)
}

func TestService_Push_LostRaceBecomesConflict(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	clientTS := time.Now().Add(-time.Minute)
	snapshot := json.RawMessage(`{"id":"p-1","name":"Winner"}`)

	req := PushRequest{
		DeviceID: "dev-1",
		Changes: []Change{
			{
				EntityType:      catalog.KindProduct,
				EntityID:        "p-1",
				Operation:       OpUpdate,
				Payload:         json.RawMessage(`{"name":"Loser"}`),
				ClientTimestamp: clientTS,
			},
		},
	}

	// Detection passes, but the conditional write loses the race
	mockStore.On("UpdatedAt", mock.Anything, catalog.KindProduct, 42, "p-1").Return(clientTS.Add(-time.Second), true, nil)
	mockStore.On("UpdateProduct", mock.Anything, 42, "p-1", mock.Anything, clientTS, mock.Anything).Return(catalog.ErrStaleEntity)
	mockStore.On("Snapshot", mock.Anything, catalog.KindProduct, 42, "p-1").Return(snapshot, nil)
	mockRepo.On("SaveQueueRecord", mock.Anything, mock.MatchedBy(func(rec *QueueRecord) bool {
		return rec.Status == StatusConflict
	})).Return(nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Push(identityContext(7, 42), req)
	assert.NoError(t, err)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, "Conflict detected", resp.Results[0].Error)
	assert.Equal(t, snapshot, resp.Results[0].ConflictData)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Push_UnknownEntityTypeDoesNotAbortBatch(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	req := PushRequest{
		DeviceID: "dev-1",
		Changes: []Change{
			{
				EntityType:      catalog.Kind("order"),
				EntityID:        "o-1",
				Operation:       OpCreate,
				ClientTimestamp: time.Now(),
			},
			{
				EntityType:      catalog.KindProduct,
				EntityID:        "p-1",
				Operation:       OpDelete,
				ClientTimestamp: time.Now(),
			},
		},
	}

	mockStore.On("UpdatedAt", mock.Anything, catalog.KindProduct, 42, "p-1").Return(time.Time{}, false, nil)
	mockStore.On("SoftDeleteProduct", mock.Anything, 42, "p-1", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("SaveQueueRecord", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Push(identityContext(7, 42), req)
	assert.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.False(t, resp.Results[0].Success)
	assert.Contains(t, resp.Results[0].Error, "unsupported entity type")
	assert.True(t, resp.Results[1].Success)
}

func TestService_Push_NotAuthenticated(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockStore), nil)

	_, err := service.Push(context.Background(), PushRequest{DeviceID: "dev-1"})
	assert.Error(t, err)
}

func TestService_Push_DeviceRequired(t *testing.T) {
	service := newTestService(new(MockRepository), new(MockStore), nil)

	_, err := service.Push(identityContext(7, 42), PushRequest{})
	assert.ErrorIs(t, err, ErrDeviceRequired)
}

func TestService_Push_PrunesQueueWithRetention(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, &ServiceConfig{PageSize: 100, RetentionDays: 30})

	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("PruneCompletedDeletes", mock.Anything, 42, mock.MatchedBy(func(before time.Time) bool {
		return time.Since(before) > 29*24*time.Hour
	})).Return(int64(3), nil)

	_, err := service.Push(identityContext(7, 42), PushRequest{DeviceID: "dev-1"})
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestService_Pull_MergesLiveAndDeletionFeed(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, &ServiceConfig{PageSize: 100})

	since := time.Now().Add(-time.Hour)
	t1 := since.Add(10 * time.Minute)
	t2 := since.Add(20 * time.Minute)
	t3 := since.Add(30 * time.Minute)

	products := []catalog.Product{
		{ID: "p-1", BusinessID: 42, Name: "Coffee", UpdatedAt: t2},
		{ID: "p-2", BusinessID: 42, Name: "Tea", Deleted: true, UpdatedAt: t3},
	}
	imageDeletes := []QueueRecord{
		{EntityType: catalog.KindImage, EntityID: "img-1", Operation: OpDelete, Status: StatusCompleted, ProcessedAt: t1},
	}

	mockStore.On("ProductsSince", mock.Anything, 42, since, 101).Return(products, nil)
	mockStore.On("CategoriesSince", mock.Anything, 42, since, 101).Return([]catalog.Category{}, nil)
	mockRepo.On("CompletedDeletesSince", mock.Anything, 42, []catalog.Kind{catalog.KindImage}, since).Return(imageDeletes, nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Pull(identityContext(7, 42), PullRequest{DeviceID: "dev-1", LastSyncAt: since})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)
	assert.False(t, resp.HasMore)
	assert.Len(t, resp.Changes, 3)

	// Changes are ordered by server timestamp
	assert.Equal(t, "img-1", resp.Changes[0].EntityID)
	assert.Equal(t, OpDelete, resp.Changes[0].Operation)
	assert.Equal(t, "p-1", resp.Changes[1].EntityID)
	assert.Equal(t, OpUpdate, resp.Changes[1].Operation)
	assert.NotEmpty(t, resp.Changes[1].Data)
	// Soft-deleted product surfaces as a delete without a payload
	assert.Equal(t, "p-2", resp.Changes[2].EntityID)
	assert.Equal(t, OpDelete, resp.Changes[2].Operation)
	assert.Empty(t, resp.Changes[2].Data)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Pull_TruncatesToPageSize(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, &ServiceConfig{PageSize: 2})

	since := time.Now().Add(-time.Hour)
	products := []catalog.Product{
		{ID: "p-1", UpdatedAt: since.Add(1 * time.Minute)},
		{ID: "p-2", UpdatedAt: since.Add(2 * time.Minute)},
		{ID: "p-3", UpdatedAt: since.Add(3 * time.Minute)},
	}

	mockStore.On("ProductsSince", mock.Anything, 42, since, 3).Return(products, nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Pull(identityContext(7, 42), PullRequest{
		DeviceID:    "dev-1",
		LastSyncAt:  since,
		EntityTypes: []catalog.Kind{catalog.KindProduct},
	})
	assert.NoError(t, err)
	assert.True(t, resp.HasMore)
	assert.Len(t, resp.Changes, 2)
	assert.Equal(t, "p-1", resp.Changes[0].EntityID)
	assert.Equal(t, "p-2", resp.Changes[1].EntityID)
}

func TestService_Pull_UsesStoredCheckpoint(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, &ServiceConfig{PageSize: 100})

	cpTime := time.Now().Add(-2 * time.Hour)
	mockRepo.On("GetCheckpoint", mock.Anything, 7, 42, "dev-1").Return(&Checkpoint{LastSyncAt: cpTime}, nil)
	mockStore.On("ProductsSince", mock.Anything, 42, cpTime, 101).Return([]catalog.Product{}, nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.Pull(identityContext(7, 42), PullRequest{
		DeviceID:    "dev-1",
		EntityTypes: []catalog.Kind{catalog.KindProduct},
	})
	assert.NoError(t, err)
	assert.Empty(t, resp.Changes)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_FullSync(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	products := []catalog.Product{{ID: "p-1", Name: "Coffee"}}
	categories := []catalog.Category{{ID: "c-1", Name: "Drinks"}}

	mockStore.On("ListProducts", mock.Anything, 42, false).Return(products, nil)
	mockStore.On("ListCategories", mock.Anything, 42, false).Return(categories, nil)
	mockRepo.On("AdvanceCheckpoint", mock.Anything, mock.MatchedBy(func(cp *Checkpoint) bool {
		return cp.DeviceID == "dev-new" && !cp.LastSyncAt.IsZero()
	})).Return(nil)

	resp, err := service.FullSync(identityContext(7, 42), FullSyncRequest{DeviceID: "dev-new"})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)
	assert.Len(t, resp.Products, 1)
	assert.Len(t, resp.Categories, 1)
	assert.False(t, resp.ServerTimestamp.IsZero())

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Checkpoint(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	cpTime := time.Now().Add(-time.Hour)
	mockRepo.On("GetCheckpoint", mock.Anything, 7, 42, "dev-1").Return(&Checkpoint{LastSyncAt: cpTime}, nil)

	resp, err := service.Checkpoint(identityContext(7, 42), "dev-1")
	assert.NoError(t, err)
	assert.Equal(t, cpTime, resp.LastSyncAt)
	assert.Equal(t, "dev-1", resp.DeviceID)
}

func TestService_Checkpoint_NeverSynced(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	mockRepo.On("GetCheckpoint", mock.Anything, 7, 42, "dev-1").Return(nil, nil)

	resp, err := service.Checkpoint(identityContext(7, 42), "dev-1")
	assert.NoError(t, err)
	assert.True(t, resp.LastSyncAt.IsZero())
}

func TestService_Conflicts(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	conflicts := []QueueRecord{
		{ID: "q-1", EntityID: "p-1", Status: StatusConflict},
	}
	mockRepo.On("ListConflicts", mock.Anything, 42).Return(conflicts, nil)

	resp, err := service.Conflicts(identityContext(7, 42))
	assert.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, "q-1", resp.Data[0].ID)
}

func TestService_Resolve_KeepServer(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	rec := &QueueRecord{
		ID:         "q-1",
		BusinessID: 42,
		EntityType: catalog.KindProduct,
		EntityID:   "p-1",
		Operation:  OpUpdate,
		Status:     StatusConflict,
	}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)
	mockRepo.On("MarkResolved", mock.Anything, 42, "q-1", ResolutionKeepServer, mock.Anything).Return(nil)

	resp, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{Resolution: ResolutionKeepServer})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)

	// keep_server never touches the catalog
	mockStore.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestService_Resolve_KeepClientAppliesQueuedPayload(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	rec := &QueueRecord{
		ID:              "q-1",
		BusinessID:      42,
		EntityType:      catalog.KindProduct,
		EntityID:        "p-1",
		Operation:       OpUpdate,
		Payload:         json.RawMessage(`{"name":"Client version"}`),
		ClientTimestamp: time.Now().Add(-time.Hour),
		Status:          StatusConflict,
	}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)
	// claimed is the resolution time, so the conditional write always passes
	mockStore.On("UpdateProduct", mock.Anything, 42, "p-1",
		map[string]any{"name": "Client version"},
		mock.MatchedBy(func(claimed time.Time) bool { return time.Since(claimed) < time.Minute }),
		mock.Anything,
	).Return(nil)
	mockRepo.On("MarkResolved", mock.Anything, 42, "q-1", ResolutionKeepClient, mock.Anything).Return(nil)

	resp, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{Resolution: ResolutionKeepClient})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)

	mockRepo.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestService_Resolve_MergeAppliesMergedData(t *testing.T) {
	mockRepo := new(MockRepository)
	mockStore := new(MockStore)
	service := newTestService(mockRepo, mockStore, nil)

	rec := &QueueRecord{
		ID:              "q-1",
		BusinessID:      42,
		EntityType:      catalog.KindProduct,
		EntityID:        "p-1",
		Operation:       OpUpdate,
		Payload:         json.RawMessage(`{"name":"Client version"}`),
		ClientTimestamp: time.Now().Add(-time.Hour),
		Status:          StatusConflict,
	}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)
	mockStore.On("UpdateProduct", mock.Anything, 42, "p-1",
		map[string]any{"name": "Merged", "price": float64(100)},
		mock.Anything, mock.Anything,
	).Return(nil)
	mockRepo.On("MarkResolved", mock.Anything, 42, "q-1", ResolutionMerge, mock.Anything).Return(nil)

	resp, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{
		Resolution: ResolutionMerge,
		MergedData: json.RawMessage(`{"name":"Merged","price":100}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Ok", resp.Status)
}

func TestService_Resolve_MergeRequiresData(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	rec := &QueueRecord{ID: "q-1", BusinessID: 42, Status: StatusConflict, EntityType: catalog.KindProduct, Operation: OpUpdate}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)

	_, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{Resolution: ResolutionMerge})
	assert.ErrorIs(t, err, ErrMergedDataRequired)
}

func TestService_Resolve_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	mockRepo.On("GetQueueRecord", mock.Anything, 42, "missing").Return(nil, nil)

	_, err := service.Resolve(identityContext(7, 42), "missing", ResolveRequest{Resolution: ResolutionKeepServer})
	assert.ErrorIs(t, err, ErrConflictNotFound)
}

func TestService_Resolve_AlreadyResolved(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	rec := &QueueRecord{ID: "q-1", BusinessID: 42, Status: StatusResolved}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)

	_, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{Resolution: ResolutionKeepServer})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestService_Resolve_UnknownResolution(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo, new(MockStore), nil)

	rec := &QueueRecord{ID: "q-1", BusinessID: 42, Status: StatusConflict}
	mockRepo.On("GetQueueRecord", mock.Anything, 42, "q-1").Return(rec, nil)

	_, err := service.Resolve(identityContext(7, 42), "q-1", ResolveRequest{Resolution: Resolution("discard")})
	assert.ErrorIs(t, err, ErrUnknownResolution)
}
