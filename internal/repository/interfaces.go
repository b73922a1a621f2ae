package repository

import (
	"context"
	"time"

	"github.com/vytor/flashrecall/internal/models"
)

// ProgressRepository persists one CardProgress per (user, collection, card).
//
// Writes are full upserts with last-write-wins semantics; no cross-record
// transactions are offered.
type ProgressRepository interface {
	// Get returns nil, nil when no record exists for key.
	Get(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error)
	Put(ctx context.Context, progress models.CardProgress) error
	// QueryByUser returns every record of userID, limited to collectionID
	// unless it is empty.
	QueryByUser(ctx context.Context, userID, collectionID string) ([]models.CardProgress, error)
	// QueryDue returns records whose NextReviewDate is not after asOf,
	// ordered by NextReviewDate, card ID, then collection ID.
	QueryDue(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.CardProgress, error)
	ListUsers(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
