package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashrecall/internal/models"
)

// MockNotifier is a mock implementation of worker.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDue(ctx context.Context, userID string, stats models.ReviewStats) error {
	args := m.Called(ctx, userID, stats)
	return args.Error(0)
}

// MockStatsSource is a mock implementation of worker.StatsSource
type MockStatsSource struct {
	mock.Mock
}

func (m *MockStatsSource) GetUserReviewStats(ctx context.Context, userID, collectionID string) (*models.ReviewStats, error) {
	args := m.Called(ctx, userID, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewStats), args.Error(1)
}
