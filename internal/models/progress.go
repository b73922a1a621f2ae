package models

import "time"

// ProgressKey identifies one learner's progress on one card of one collection.
type ProgressKey struct {
	UserID       string `json:"user_id" db:"user_id"`
	CollectionID string `json:"collection_id" db:"collection_id"`
	CardID       string `json:"card_id" db:"card_id"`
}

// CardProgress is the scheduling state of a single card for a single learner.
type CardProgress struct {
	ProgressKey
	EaseFactor     float64    `json:"ease_factor" db:"ease_factor"`
	Interval       int        `json:"interval" db:"interval_days"`
	Repetitions    int        `json:"repetitions" db:"repetitions"`
	NextReviewDate time.Time  `json:"next_review_date" db:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty" db:"last_review_date"`
	Quality        int        `json:"quality" db:"quality"`
	TotalReviews   int        `json:"total_reviews" db:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews" db:"correct_reviews"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// IsDue reports whether the card should be presented at asOf.
func (p CardProgress) IsDue(asOf time.Time) bool {
	return !p.NextReviewDate.After(asOf)
}

// ReviewCard is the trimmed view returned by due-card queries. CollectionID
// disambiguates cards when the query spans every collection.
type ReviewCard struct {
	CollectionID string  `json:"collection_id"`
	CardID       string  `json:"card_id"`
	Interval     int     `json:"interval"`
	Repetitions  int     `json:"repetitions"`
	EaseFactor   float64 `json:"ease_factor"`
}

// ProgressView is one entry of a collection progress map.
type ProgressView struct {
	EaseFactor     float64    `json:"ease_factor"`
	Interval       int        `json:"interval"`
	Repetitions    int        `json:"repetitions"`
	NextReviewDate time.Time  `json:"next_review_date"`
	LastReviewDate *time.Time `json:"last_review_date,omitempty"`
	TotalReviews   int        `json:"total_reviews"`
	CorrectReviews int        `json:"correct_reviews"`
	SuccessRate    int        `json:"success_rate"`
}

// ReviewStats aggregates progress records for a learner.
type ReviewStats struct {
	TotalCards     int `json:"total_cards"`
	DueToday       int `json:"due_today"`
	Mastered       int `json:"mastered"`
	Learning       int `json:"learning"`
	NewCards       int `json:"new_cards"`
	TotalReviews   int `json:"total_reviews"`
	CorrectReviews int `json:"correct_reviews"`
	SuccessRate    int `json:"success_rate"`
}
