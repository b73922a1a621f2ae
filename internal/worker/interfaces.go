package worker

import (
	"context"

	"github.com/vytor/flashrecall/internal/models"
)

// StatsSource is the slice of services.StatsService a digest needs.
// Declared here so worker does not import services.
type StatsSource interface {
	GetUserReviewStats(ctx context.Context, userID, collectionID string) (*models.ReviewStats, error)
}

// Notifier delivers a due-card digest to a learner.
type Notifier interface {
	NotifyDue(ctx context.Context, userID string, stats models.ReviewStats) error
}
