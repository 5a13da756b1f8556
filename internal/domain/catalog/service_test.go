package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

// MockStore is a mock implementation of the Store interface for testing
type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertProduct(ctx context.Context, p *Product) error {
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

func (m *MockStore) GetProduct(ctx context.Context, businessID int, id string) (*Product, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockStore) ListProducts(ctx context.Context, businessID int, includeDeleted bool) ([]Product, error) {
	args := m.Called(ctx, businessID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockStore) ProductsSince(ctx context.Context, businessID int, since time.Time, limit int) ([]Product, error) {
	args := m.Called(ctx, businessID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockStore) UpsertCategory(ctx context.Context, c *Category) error {
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

func (m *MockStore) GetCategory(ctx context.Context, businessID int, id string) (*Category, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Category), args.Error(1)
}

func (m *MockStore) ListCategories(ctx context.Context, businessID int, includeDeleted bool) ([]Category, error) {
	args := m.Called(ctx, businessID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockStore) CategoriesSince(ctx context.Context, businessID int, since time.Time, limit int) ([]Category, error) {
	args := m.Called(ctx, businessID, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockStore) UpsertImage(ctx context.Context, img *Image) error {
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

func (m *MockStore) GetImage(ctx context.Context, businessID int, id string) (*Image, error) {
	args := m.Called(ctx, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Image), args.Error(1)
}

func (m *MockStore) UpdatedAt(ctx context.Context, kind Kind, businessID int, id string) (time.Time, bool, error) {
	args := m.Called(ctx, kind, businessID, id)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *MockStore) Snapshot(ctx context.Context, kind Kind, businessID int, id string) (json.RawMessage, error) {
	args := m.Called(ctx, kind, businessID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func TestService_ListProducts(t *testing.T) {
	mockStore := new(MockStore)
	service := NewService(mockStore, slog.Default())

	products := []Product{
		{ID: "p-1", Name: "Coffee", Price: 35000},
		{ID: "p-2", Name: "Tea", Price: 25000},
	}
	// Read API only ever sees active entities
	mockStore.On("ListProducts", mock.Anything, 42, false).Return(products, nil)

	result, err := service.ListProducts(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "Coffee", result[0].Name)

	mockStore.AssertExpectations(t)
}

func TestService_GetProduct(t *testing.T) {
	mockStore := new(MockStore)
	service := NewService(mockStore, slog.Default())

	mockStore.On("GetProduct", mock.Anything, 42, "p-1").Return(&Product{ID: "p-1", Name: "Coffee"}, nil)

	p, err := service.GetProduct(context.Background(), 42, "p-1")
	assert.NoError(t, err)
	assert.Equal(t, "Coffee", p.Name)
}

func TestService_GetProduct_NotFound(t *testing.T) {
	mockStore := new(MockStore)
	service := NewService(mockStore, slog.Default())

	mockStore.On("GetProduct", mock.Anything, 42, "missing").Return(nil, ErrNotFound)

	_, err := service.GetProduct(context.Background(), 42, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_ListCategories(t *testing.T) {
	mockStore := new(MockStore)
	service := NewService(mockStore, slog.Default())

	categories := []Category{{ID: "c-1", Name: "Drinks"}}
	mockStore.On("ListCategories", mock.Anything, 42, false).Return(categories, nil)

	result, err := service.ListCategories(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestService_ListProducts_StoreError(t *testing.T) {
	mockStore := new(MockStore)
	service := NewService(mockStore, slog.Default())

	mockStore.On("ListProducts", mock.Anything, 42, false).Return(nil, errors.New("connection lost"))

	_, err := service.ListProducts(context.Background(), 42)
	assert.Error(t, err)
}
