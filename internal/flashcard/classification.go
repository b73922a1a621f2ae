package flashcard

import (
	"math"
	"time"

	"github.com/vytor/flashrecall/internal/models"
)

// Mastery buckets cards by their current success streak.
type Mastery string

const (
	MasteryNew      Mastery = "new"
	MasteryLearning Mastery = "learning"
	MasteryMastered Mastery = "mastered"
)

// Classify maps a repetition streak onto a mastery bucket.
func Classify(repetitions int) Mastery {
	switch {
	case repetitions >= MasteredRepetitions:
		return MasteryMastered
	case repetitions > 0:
		return MasteryLearning
	default:
		return MasteryNew
	}
}

// SuccessRate returns correct/total as a rounded percentage, or 0 when
// nothing has been reviewed.
func SuccessRate(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Aggregate folds a set of progress records into learner-facing totals.
func Aggregate(records []models.CardProgress, now time.Time) models.ReviewStats {
	var stats models.ReviewStats
	for _, r := range records {
		stats.TotalCards++
		stats.TotalReviews += r.TotalReviews
		stats.CorrectReviews += r.CorrectReviews

		switch Classify(r.Repetitions) {
		case MasteryMastered:
			stats.Mastered++
		case MasteryLearning:
			stats.Learning++
		default:
			stats.NewCards++
		}

		if r.IsDue(now) {
			stats.DueToday++
		}
	}
	stats.SuccessRate = SuccessRate(stats.CorrectReviews, stats.TotalReviews)
	return stats
}

// View converts a stored record into its collection-progress entry.
func View(p models.CardProgress) models.ProgressView {
	return models.ProgressView{
		EaseFactor:     p.EaseFactor,
		Interval:       p.Interval,
		Repetitions:    p.Repetitions,
		NextReviewDate: p.NextReviewDate,
		LastReviewDate: p.LastReviewDate,
		TotalReviews:   p.TotalReviews,
		CorrectReviews: p.CorrectReviews,
		SuccessRate:    SuccessRate(p.CorrectReviews, p.TotalReviews),
	}
}
