package flashcard

import (
	"math"
	"time"

	"github.com/vytor/flashrecall/internal/models"
)

const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3

	MinQuality  = 0
	MaxQuality  = 5
	PassQuality = 3

	// MasteredRepetitions is the streak at which a card counts as mastered.
	MasteredRepetitions = 5

	masteredOverrideRepetitions = 10
	masteredOverrideInterval    = 365
)

// Initialize returns the state of a card that has never been reviewed.
func Initialize(now time.Time) models.CardProgress {
	return models.CardProgress{
		EaseFactor:     InitialEaseFactor,
		Interval:       0,
		Repetitions:    0,
		NextReviewDate: now,
	}
}

// ClampQuality forces q into [MinQuality, MaxQuality]. The second result
// reports whether q was out of range.
func ClampQuality(q int) (int, bool) {
	switch {
	case q < MinQuality:
		return MinQuality, true
	case q > MaxQuality:
		return MaxQuality, true
	default:
		return q, false
	}
}

// QualityFromScore rounds an arbitrary numeric score to the nearest whole
// quality and clamps it into [MinQuality, MaxQuality]. Clamping happens on
// the float, so scores beyond the int range cannot overflow. The second
// result reports whether the score was changed.
func QualityFromScore(score float64) (int, bool) {
	rounded := math.Round(score)
	switch {
	case math.IsNaN(rounded):
		return MinQuality, true
	case rounded < MinQuality:
		return MinQuality, true
	case rounded > MaxQuality:
		return MaxQuality, true
	default:
		return int(rounded), rounded != score
	}
}

// ComputeNextState applies one SM-2 step to card for the given recall quality.
// Identity and review counters are carried over untouched.
func ComputeNextState(card models.CardProgress, quality int, now time.Time) models.CardProgress {
	quality, _ = ClampQuality(quality)

	interval := card.Interval
	repetitions := card.Repetitions
	if quality >= PassQuality {
		switch repetitions {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * card.EaseFactor))
		}
		repetitions++
	} else {
		repetitions = 0
		interval = 1
	}

	card.EaseFactor = nextEaseFactor(card.EaseFactor, quality)
	card.Interval = interval
	card.Repetitions = repetitions
	card.Quality = quality
	card.NextReviewDate = addDays(now, interval)
	reviewed := now
	card.LastReviewDate = &reviewed
	return card
}

// nextEaseFactor uses the ease factor from before the review.
func nextEaseFactor(ef float64, quality int) float64 {
	miss := float64(MaxQuality - quality)
	ef = ef + (0.1 - miss*(0.08+miss*0.02))
	return math.Max(MinEaseFactor, ef)
}

// MarkMastered pushes a card a year out without touching its ease factor or
// review counters.
func MarkMastered(card models.CardProgress, now time.Time) models.CardProgress {
	card.Repetitions = masteredOverrideRepetitions
	card.Interval = masteredOverrideInterval
	card.NextReviewDate = addDays(now, masteredOverrideInterval)
	return card
}

func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
