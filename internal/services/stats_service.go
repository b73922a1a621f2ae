package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/flashrecall/internal/errors"
	"github.com/vytor/flashrecall/internal/flashcard"
	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
	"github.com/vytor/flashrecall/internal/repository"
)

// StatsService answers read-only questions about a learner's progress
type StatsService interface {
	GetCardsForReview(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.ReviewCard, error)
	GetCollectionProgress(ctx context.Context, userID, collectionID string) (map[string]models.ProgressView, error)
	GetUserReviewStats(ctx context.Context, userID, collectionID string) (*models.ReviewStats, error)
}

type statsService struct {
	repo    repository.ProgressRepository
	now     func() time.Time
	timeout time.Duration
}

// NewStatsService creates a new StatsService
func NewStatsService(repo repository.ProgressRepository, now func() time.Time, timeout time.Duration) StatsService {
	if now == nil {
		now = time.Now
	}
	return &statsService{repo: repo, now: now, timeout: timeout}
}

func (s *statsService) GetCardsForReview(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting cards for review: user_id=%s, collection_id=%s", userID, collectionID)

	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.repo.QueryDue(ctx, userID, collectionID, asOf.UTC())
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, errors.NewStoreError("read", err)
	}

	cards := make([]models.ReviewCard, 0, len(records))
	for _, r := range records {
		cards = append(cards, models.ReviewCard{
			CollectionID: r.CollectionID,
			CardID:       r.CardID,
			Interval:     r.Interval,
			Repetitions:  r.Repetitions,
			EaseFactor:   r.EaseFactor,
		})
	}
	log.Debug("found %d cards due", len(cards))
	return cards, nil
}

func (s *statsService) GetCollectionProgress(ctx context.Context, userID, collectionID string) (map[string]models.ProgressView, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting collection progress: user_id=%s, collection_id=%s", userID, collectionID)

	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}
	if strings.TrimSpace(collectionID) == "" {
		return nil, errors.NewValidationError("collection_id", "must not be empty")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.repo.QueryByUser(ctx, userID, collectionID)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, errors.NewStoreError("read", err)
	}

	views := make(map[string]models.ProgressView, len(records))
	for _, r := range records {
		views[r.CardID] = flashcard.View(r)
	}
	return views, nil
}

func (s *statsService) GetUserReviewStats(ctx context.Context, userID, collectionID string) (*models.ReviewStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting review stats: user_id=%s, collection_id=%s", userID, collectionID)

	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError("user_id", "must not be empty")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.repo.QueryByUser(ctx, userID, collectionID)
	if err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, errors.NewStoreError("read", err)
	}

	stats := flashcard.Aggregate(records, s.now().UTC())
	return &stats, nil
}
