package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"marketsync/internal/domain/catalog"
)

func TestApplier_CreateProductStampsServerFields(t *testing.T) {
	mockStore := new(MockStore)
	applier := NewApplier(mockStore)

	appliedAt := time.Now().UTC()
	ch := Change{
		EntityType: catalog.KindProduct,
		EntityID:   "p-1",
		Operation:  OpCreate,
		Payload:    json.RawMessage(`{"name":"Coffee","price":35000,"deleted":true,"business_id":999}`),
	}

	// Server-owned fields from the payload are overwritten
	mockStore.On("UpsertProduct", mock.Anything, mock.MatchedBy(func(p *catalog.Product) bool {
		return p.ID == "p-1" &&
			p.BusinessID == 42 &&
			p.Name == "Coffee" &&
			!p.Deleted &&
			p.CreatedAt.Equal(appliedAt) &&
			p.UpdatedAt.Equal(appliedAt) &&
			p.LastSyncedAt != nil
	})).Return(nil)

	err := applier.Apply(context.Background(), 42, ch, time.Now(), appliedAt)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestApplier_UpdateProductPassesPatchAndClaimed(t *testing.T) {
	mockStore := new(MockStore)
	applier := NewApplier(mockStore)

	claimed := time.Now().Add(-time.Minute)
	appliedAt := time.Now()
	ch := Change{
		EntityType: catalog.KindProduct,
		EntityID:   "p-1",
		Operation:  OpUpdate,
		Payload:    json.RawMessage(`{"price":40000,"quantity":3}`),
	}

	mockStore.On("UpdateProduct", mock.Anything, 42, "p-1",
		map[string]any{"price": float64(40000), "quantity": float64(3)},
		claimed, appliedAt,
	).Return(nil)

	err := applier.Apply(context.Background(), 42, ch, claimed, appliedAt)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestApplier_DeleteProductIsSoft(t *testing.T) {
	mockStore := new(MockStore)
	applier := NewApplier(mockStore)

	claimed := time.Now().Add(-time.Minute)
	appliedAt := time.Now()

	mockStore.On("SoftDeleteProduct", mock.Anything, 42, "p-1", claimed, appliedAt).Return(nil)

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.KindProduct,
		EntityID:   "p-1",
		Operation:  OpDelete,
	}, claimed, appliedAt)
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestApplier_DeleteImageIsHard(t *testing.T) {
	mockStore := new(MockStore)
	applier := NewApplier(mockStore)

	mockStore.On("DeleteImage", mock.Anything, 42, "img-1").Return(nil)

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.KindImage,
		EntityID:   "img-1",
		Operation:  OpDelete,
	}, time.Now(), time.Now())
	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestApplier_CreateCategory(t *testing.T) {
	mockStore := new(MockStore)
	applier := NewApplier(mockStore)

	mockStore.On("UpsertCategory", mock.Anything, mock.MatchedBy(func(c *catalog.Category) bool {
		return c.ID == "c-1" && c.BusinessID == 42 && c.Name == "Drinks"
	})).Return(nil)

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.KindCategory,
		EntityID:   "c-1",
		Operation:  OpCreate,
		Payload:    json.RawMessage(`{"name":"Drinks","sort_order":1}`),
	}, time.Now(), time.Now())
	assert.NoError(t, err)
}

func TestApplier_UnknownKind(t *testing.T) {
	applier := NewApplier(new(MockStore))

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.Kind("order"),
		Operation:  OpCreate,
	}, time.Now(), time.Now())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown entity type")
}

func TestApplier_UnknownOperation(t *testing.T) {
	applier := NewApplier(new(MockStore))

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.KindProduct,
		Operation:  Operation("rename"),
	}, time.Now(), time.Now())
	assert.Error(t, err)
}

func TestApplier_UpdateRejectsEmptyPayload(t *testing.T) {
	applier := NewApplier(new(MockStore))

	err := applier.Apply(context.Background(), 42, Change{
		EntityType: catalog.KindProduct,
		EntityID:   "p-1",
		Operation:  OpUpdate,
	}, time.Now(), time.Now())
	assert.Error(t, err)
}

func TestApplier_DeletionPolicies(t *testing.T) {
	applier := NewApplier(new(MockStore))

	tests := []struct {
		kind     catalog.Kind
		policy   DeletionPolicy
		pullable bool
	}{
		{catalog.KindProduct, DeleteSoft, true},
		{catalog.KindCategory, DeleteSoft, true},
		{catalog.KindImage, DeleteHard, false},
	}

	for _, tt := range tests {
		policy, ok := applier.DeletionPolicy(tt.kind)
		assert.True(t, ok, tt.kind)
		assert.Equal(t, tt.policy, policy, tt.kind)
		assert.Equal(t, tt.pullable, applier.Pullable(tt.kind), tt.kind)
	}

	_, ok := applier.DeletionPolicy(catalog.Kind("order"))
	assert.False(t, ok)
}
