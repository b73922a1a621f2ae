package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/models"
	"github.com/vytor/flashrecall/internal/repository"
)

const progressTable = "card_progress"

var progressColumns = []string{
	"user_id", "collection_id", "card_id", "ease_factor", "interval_days", "repetitions",
	"next_review_date", "last_review_date", "quality", "total_reviews", "correct_reviews", "updated_at",
}

const upsertSuffix = `ON CONFLICT (user_id, collection_id, card_id) DO UPDATE SET
    ease_factor = excluded.ease_factor,
    interval_days = excluded.interval_days,
    repetitions = excluded.repetitions,
    next_review_date = excluded.next_review_date,
    last_review_date = excluded.last_review_date,
    quality = excluded.quality,
    total_reviews = excluded.total_reviews,
    correct_reviews = excluded.correct_reviews,
    updated_at = excluded.updated_at`

type progressRepository struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewProgressRepository creates a ProgressRepository over a SQLite or
// PostgreSQL connection opened by db.Open.
func NewProgressRepository(db *sqlx.DB) repository.ProgressRepository {
	return &progressRepository{db: db, sb: statementBuilder(db.DriverName())}
}

func (r *progressRepository) Get(ctx context.Context, key models.ProgressKey) (*models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("getting progress: user_id=%s, collection_id=%s, card_id=%s", key.UserID, key.CollectionID, key.CardID)

	query, args, err := r.sb.Select(progressColumns...).
		From(progressTable).
		Where(squirrel.Eq{
			"user_id":       key.UserID,
			"collection_id": key.CollectionID,
			"card_id":       key.CardID,
		}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var p models.CardProgress
	err = r.db.GetContext(ctx, &p, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("progress not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get progress: %v", err)
		return nil, err
	}
	normalize(&p)
	return &p, nil
}

func (r *progressRepository) Put(ctx context.Context, p models.CardProgress) error {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("upserting progress: card_id=%s, interval=%d, ease=%.2f", p.CardID, p.Interval, p.EaseFactor)

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	var lastReview interface{}
	if p.LastReviewDate != nil {
		lastReview = p.LastReviewDate.UTC()
	}

	query, args, err := r.sb.Insert(progressTable).
		Columns(progressColumns...).
		Values(
			p.UserID, p.CollectionID, p.CardID, p.EaseFactor, p.Interval, p.Repetitions,
			p.NextReviewDate.UTC(), lastReview, p.Quality, p.TotalReviews, p.CorrectReviews, updatedAt.UTC(),
		).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		log.Error("failed to build upsert: %v", err)
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert progress: %v", err)
		return err
	}
	return nil
}

func (r *progressRepository) QueryByUser(ctx context.Context, userID, collectionID string) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("querying progress: user_id=%s, collection_id=%s", userID, collectionID)

	query := r.sb.Select(progressColumns...).
		From(progressTable).
		Where(squirrel.Eq{"user_id": userID})
	if collectionID != "" {
		query = query.Where(squirrel.Eq{"collection_id": collectionID})
	}
	query = query.OrderBy("collection_id", "card_id")

	return r.selectProgress(ctx, log, query)
}

func (r *progressRepository) QueryDue(ctx context.Context, userID, collectionID string, asOf time.Time) ([]models.CardProgress, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")
	log.Debug("querying due progress: user_id=%s, collection_id=%s, as_of=%s", userID, collectionID, asOf.Format(time.RFC3339))

	query := r.sb.Select(progressColumns...).
		From(progressTable).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_review_date": asOf.UTC()})
	if collectionID != "" {
		query = query.Where(squirrel.Eq{"collection_id": collectionID})
	}
	query = query.OrderBy("next_review_date", "card_id", "collection_id")

	cards, err := r.selectProgress(ctx, log, query)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d due cards", len(cards))
	return cards, nil
}

func (r *progressRepository) ListUsers(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("progress_repo")

	query, args, err := r.sb.Select("user_id").Distinct().From(progressTable).OrderBy("user_id").ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var users []string
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		log.Error("failed to list users: %v", err)
		return nil, err
	}
	return users, nil
}

func (r *progressRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *progressRepository) selectProgress(ctx context.Context, log *logger.Logger, query squirrel.SelectBuilder) ([]models.CardProgress, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var cards []models.CardProgress
	if err := r.db.SelectContext(ctx, &cards, sqlStr, args...); err != nil {
		log.Error("failed to query progress: %v", err)
		return nil, err
	}
	for i := range cards {
		normalize(&cards[i])
	}
	return cards, nil
}
