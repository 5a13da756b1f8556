package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID, businessID int, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, businessID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockRepository) Validate(ctx context.Context, tokenHash string) (Identity, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(Identity), args.Error(1)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	// The stored value must be a hash, never the raw token
	var storedHash string
	mockRepo.On("Create", mock.Anything, 123, 7, mock.MatchedBy(func(hash string) bool {
		storedHash = hash
		return len(hash) == 64
	}), mock.MatchedBy(func(expiresAt time.Time) bool {
		return time.Until(expiresAt) > 23*time.Hour
	})).Return(nil)

	token, err := service.Create(context.Background(), 123, 7)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, token, storedHash)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Create", mock.Anything, 123, 7, mock.Anything, mock.Anything).
		Return(errors.New("database error"))

	_, err := service.Create(context.Background(), 123, 7)
	assert.Error(t, err)
}

func TestService_CreateThenValidate(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	var storedHash string
	mockRepo.On("Create", mock.Anything, 123, 7, mock.MatchedBy(func(hash string) bool {
		storedHash = hash
		return true
	}), mock.Anything).Return(nil)

	token, err := service.Create(context.Background(), 123, 7)
	assert.NoError(t, err)

	// Validate hashes the presented token the same way
	mockRepo.On("Validate", mock.Anything, storedHash).Return(Identity{UserID: 123, BusinessID: 7}, nil)

	identity, err := service.Validate(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, 123, identity.UserID)
	assert.Equal(t, 7, identity.BusinessID)
}

func TestService_Validate_UnknownToken(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, slog.Default())

	mockRepo.On("Validate", mock.Anything, mock.AnythingOfType("string")).
		Return(Identity{}, errors.New("session not found"))

	_, err := service.Validate(context.Background(), "forged-token")
	assert.Error(t, err)
}
