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

// ReviewService records learner answers and manual overrides
type ReviewService interface {
	RecordReview(ctx context.Context, key models.ProgressKey, quality int) (*models.CardProgress, error)
	MarkAsMastered(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error)
	ResetProgress(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error)
}

type reviewService struct {
	repo    repository.ProgressRepository
	now     func() time.Time
	timeout time.Duration
}

// NewReviewService creates a new ReviewService. now is read once per
// operation; timeout bounds every store call and is ignored when zero.
func NewReviewService(repo repository.ProgressRepository, now func() time.Time, timeout time.Duration) ReviewService {
	if now == nil {
		now = time.Now
	}
	return &reviewService{repo: repo, now: now, timeout: timeout}
}

func (s *reviewService) RecordReview(ctx context.Context, key models.ProgressKey, quality int) (*models.CardProgress, error) {
	log := logger.FromContext(ctx).WithKey(key.UserID, key.CollectionID, key.CardID)
	log.Debug("recording review: quality=%d", quality)

	if err := validateKey(key); err != nil {
		return nil, err
	}

	clamped, outOfRange := flashcard.ClampQuality(quality)
	if outOfRange {
		log.Warn("quality %d out of range, clamped to %d", quality, clamped)
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now().UTC()
	current, err := s.repo.Get(ctx, key)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewStoreError("read", err)
	}
	if current == nil {
		log.Debug("no prior progress, starting from initial state")
		initial := flashcard.Initialize(now)
		initial.ProgressKey = key
		current = &initial
	}

	next := flashcard.ComputeNextState(*current, clamped, now)
	next.TotalReviews++
	if clamped >= flashcard.PassQuality {
		next.CorrectReviews++
	}
	next.UpdatedAt = now

	if err := s.repo.Put(ctx, next); err != nil {
		log.Error("failed to save progress: %v", err)
		return nil, errors.NewStoreError("write", err)
	}

	log.Debug("review applied: interval=%d, repetitions=%d, ease=%.2f", next.Interval, next.Repetitions, next.EaseFactor)
	return &next, nil
}

func (s *reviewService) MarkAsMastered(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	log := logger.FromContext(ctx).WithKey(key.UserID, key.CollectionID, key.CardID)
	log.Debug("marking card as mastered")

	if err := validateKey(key); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	current, err := s.repo.Get(ctx, key)
	if err != nil {
		log.Error("failed to load progress: %v", err)
		return nil, errors.NewStoreError("read", err)
	}
	if current == nil {
		return nil, errors.NewNotFoundError("progress", key.CardID)
	}

	now := s.now().UTC()
	next := flashcard.MarkMastered(*current, now)
	next.UpdatedAt = now
	if err := s.repo.Put(ctx, next); err != nil {
		log.Error("failed to save progress: %v", err)
		return nil, errors.NewStoreError("write", err)
	}
	return &next, nil
}

func (s *reviewService) ResetProgress(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	log := logger.FromContext(ctx).WithKey(key.UserID, key.CollectionID, key.CardID)
	log.Debug("resetting progress")

	if err := validateKey(key); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now().UTC()
	fresh := flashcard.Initialize(now)
	fresh.ProgressKey = key
	fresh.UpdatedAt = now
	if err := s.repo.Put(ctx, fresh); err != nil {
		log.Error("failed to save progress: %v", err)
		return nil, errors.NewStoreError("write", err)
	}
	return &fresh, nil
}

func validateKey(key models.ProgressKey) error {
	switch {
	case strings.TrimSpace(key.UserID) == "":
		return errors.NewValidationError("user_id", "must not be empty")
	case strings.TrimSpace(key.CollectionID) == "":
		return errors.NewValidationError("collection_id", "must not be empty")
	case strings.TrimSpace(key.CardID) == "":
		return errors.NewValidationError("card_id", "must not be empty")
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
