package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashrecall/internal/models"
)

// MockProgressRepository is a mock implementation of repository.ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardProgress), args.Error(1)
}

func (m *MockProgressRepository) Put(ctx context.Context, progress models.CardProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) QueryByUser(ctx context.Context, userID, collectionID string) ([]models.CardProgress, error) {
	args := m.Called(ctx, userID, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardProgress), args.Error(1)
}

func (m *MockProgressRepository) QueryDue(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.CardProgress, error) {
	args := m.Called(ctx, userID, collectionID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardProgress), args.Error(1)
}

func (m *MockProgressRepository) ListUsers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProgressRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
