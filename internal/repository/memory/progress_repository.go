// Package memory keeps card progress in process memory. It backs local runs
// and tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vytor/flashrecall/internal/models"
	"github.com/vytor/flashrecall/internal/repository"
)

type progressRepository struct {
	mu      sync.RWMutex
	records map[models.ProgressKey]models.CardProgress
}

// NewProgressRepository creates an empty in-memory ProgressRepository.
func NewProgressRepository() repository.ProgressRepository {
	return &progressRepository{records: make(map[models.ProgressKey]models.CardProgress)}
}

func (r *progressRepository) Get(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	p = clone(p)
	return &p, nil
}

func (r *progressRepository) Put(ctx context.Context, p models.CardProgress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}
	r.mu.Lock()
	r.records[p.ProgressKey] = clone(p)
	r.mu.Unlock()
	return nil
}

func (r *progressRepository) QueryByUser(ctx context.Context, userID, collectionID string) ([]models.CardProgress, error) {
	out, err := r.filter(ctx, func(p models.CardProgress) bool {
		return p.UserID == userID && (collectionID == "" || p.CollectionID == collectionID)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CollectionID != out[j].CollectionID {
			return out[i].CollectionID < out[j].CollectionID
		}
		return out[i].CardID < out[j].CardID
	})
	return out, nil
}

func (r *progressRepository) QueryDue(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.CardProgress, error) {
	out, err := r.filter(ctx, func(p models.CardProgress) bool {
		return p.UserID == userID &&
			(collectionID == "" || p.CollectionID == collectionID) &&
			p.IsDue(asOf)
	})
	if err != nil {
		return nil, err
	}
	sortByDue(out)
	return out, nil
}

func (r *progressRepository) ListUsers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	seen := make(map[string]struct{})
	for k := range r.records {
		seen[k.UserID] = struct{}{}
	}
	r.mu.RUnlock()

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

func (r *progressRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *progressRepository) filter(ctx context.Context, keep func(models.CardProgress) bool) ([]models.CardProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CardProgress
	for _, p := range r.records {
		if keep(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func sortByDue(cards []models.CardProgress) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].NextReviewDate.Equal(cards[j].NextReviewDate) {
			return cards[i].NextReviewDate.Before(cards[j].NextReviewDate)
		}
		if cards[i].CardID != cards[j].CardID {
			return cards[i].CardID < cards[j].CardID
		}
		return cards[i].CollectionID < cards[j].CollectionID
	})
}

// clone detaches the LastReviewDate pointer from the stored copy.
func clone(p models.CardProgress) models.CardProgress {
	if p.LastReviewDate != nil {
		t := *p.LastReviewDate
		p.LastReviewDate = &t
	}
	return p
}
