package flashcard_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashrecall/internal/flashcard"
	"github.com/vytor/flashrecall/internal/models"
)

var now = time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)

func TestInitialize(t *testing.T) {
	card := flashcard.Initialize(now)

	assert.Equal(t, 2.5, card.EaseFactor)
	assert.Equal(t, 0, card.Interval)
	assert.Equal(t, 0, card.Repetitions)
	assert.Equal(t, now, card.NextReviewDate)
	assert.Nil(t, card.LastReviewDate)
	assert.Equal(t, 0, card.TotalReviews)
	assert.Equal(t, 0, card.CorrectReviews)
}

func TestComputeNextState_FirstSuccess(t *testing.T) {
	for q := 3; q <= 5; q++ {
		updated := flashcard.ComputeNextState(flashcard.Initialize(now), q, now)

		assert.Equal(t, 1, updated.Interval, "quality %d", q)
		assert.Equal(t, 1, updated.Repetitions, "quality %d", q)
	}
}

func TestComputeNextState_SecondSuccess(t *testing.T) {
	card := flashcard.ComputeNextState(flashcard.Initialize(now), 4, now)

	updated := flashcard.ComputeNextState(card, 3, now)

	assert.Equal(t, 6, updated.Interval)
	assert.Equal(t, 2, updated.Repetitions)
	assert.Equal(t, now.AddDate(0, 0, 6), updated.NextReviewDate)
}

func TestComputeNextState_PerfectStreak(t *testing.T) {
	card := flashcard.Initialize(now)

	card = flashcard.ComputeNextState(card, 5, now)
	assert.Equal(t, 1, card.Interval)
	assert.Equal(t, 1, card.Repetitions)
	assert.InDelta(t, 2.6, card.EaseFactor, 1e-9)

	card = flashcard.ComputeNextState(card, 5, now)
	assert.Equal(t, 6, card.Interval)
	assert.Equal(t, 2, card.Repetitions)
	assert.InDelta(t, 2.7, card.EaseFactor, 1e-9)

	efAfterSecond := card.EaseFactor
	card = flashcard.ComputeNextState(card, 5, now)
	assert.Equal(t, 16, card.Interval) // round(6 * 2.7)
	assert.Equal(t, 3, card.Repetitions)
	assert.Greater(t, card.EaseFactor, efAfterSecond)
}

func TestComputeNextState_Lapse(t *testing.T) {
	card := models.CardProgress{
		EaseFactor:  2.5,
		Interval:    20,
		Repetitions: 3,
	}

	updated := flashcard.ComputeNextState(card, 1, now)

	assert.Equal(t, 0, updated.Repetitions)
	assert.Equal(t, 1, updated.Interval)
	assert.InDelta(t, 1.96, updated.EaseFactor, 1e-9)
	assert.Less(t, updated.EaseFactor, card.EaseFactor)
	assert.GreaterOrEqual(t, updated.EaseFactor, flashcard.MinEaseFactor)
	assert.Equal(t, now.AddDate(0, 0, 1), updated.NextReviewDate)
}

func TestComputeNextState_FailureResetsStreak(t *testing.T) {
	for reps := 1; reps <= 12; reps++ {
		for q := 0; q < 3; q++ {
			card := models.CardProgress{EaseFactor: 2.2, Interval: 40, Repetitions: reps}

			updated := flashcard.ComputeNextState(card, q, now)

			assert.Equal(t, 0, updated.Repetitions, "reps=%d quality=%d", reps, q)
			assert.Equal(t, 1, updated.Interval, "reps=%d quality=%d", reps, q)
		}
	}
}

func TestComputeNextState_EaseFactorDelta(t *testing.T) {
	tests := []struct {
		quality  int
		expected float64
	}{
		{quality: 0, expected: 1.7},
		{quality: 1, expected: 1.96},
		{quality: 2, expected: 2.18},
		{quality: 3, expected: 2.36},
		{quality: 4, expected: 2.5},
		{quality: 5, expected: 2.6},
	}

	for _, tt := range tests {
		card := models.CardProgress{EaseFactor: 2.5, Interval: 6, Repetitions: 2}

		updated := flashcard.ComputeNextState(card, tt.quality, now)

		assert.InDelta(t, tt.expected, updated.EaseFactor, 1e-9, "quality %d", tt.quality)
	}
}

func TestComputeNextState_MinEaseFactor(t *testing.T) {
	for _, start := range []float64{1.3, 1.4, 1.75, 2.5, 3.1} {
		for q := 0; q <= 5; q++ {
			card := models.CardProgress{EaseFactor: start, Interval: 10, Repetitions: 2}

			updated := flashcard.ComputeNextState(card, q, now)

			assert.GreaterOrEqual(t, updated.EaseFactor, 1.3, "start=%.2f quality=%d", start, q)
		}
	}

	card := models.CardProgress{EaseFactor: 1.3, Interval: 10}
	for i := 0; i < 10; i++ {
		card = flashcard.ComputeNextState(card, 0, now)
		assert.Equal(t, 1.3, card.EaseFactor)
	}
}

func TestComputeNextState_IntervalUsesPriorEaseFactor(t *testing.T) {
	card := models.CardProgress{EaseFactor: 2.0, Interval: 10, Repetitions: 4}

	updated := flashcard.ComputeNextState(card, 3, now)

	// 10 * 2.0, not 10 * 1.86
	assert.Equal(t, 20, updated.Interval)
	assert.Equal(t, 5, updated.Repetitions)
}

func TestComputeNextState_ClampsQuality(t *testing.T) {
	base := models.CardProgress{EaseFactor: 2.5, Interval: 6, Repetitions: 2}

	high := flashcard.ComputeNextState(base, 9, now)
	five := flashcard.ComputeNextState(base, 5, now)
	assert.Equal(t, five, high)
	assert.Equal(t, 5, high.Quality)

	low := flashcard.ComputeNextState(base, -3, now)
	zero := flashcard.ComputeNextState(base, 0, now)
	assert.Equal(t, zero, low)
	assert.Equal(t, 0, low.Quality)
}

func TestComputeNextState_SetsReviewDates(t *testing.T) {
	updated := flashcard.ComputeNextState(flashcard.Initialize(now), 4, now)

	require.NotNil(t, updated.LastReviewDate)
	assert.Equal(t, now, *updated.LastReviewDate)
	assert.Equal(t, now.AddDate(0, 0, 1), updated.NextReviewDate)
}

func TestComputeNextState_KeepsIdentityAndCounters(t *testing.T) {
	card := models.CardProgress{
		ProgressKey:    models.ProgressKey{UserID: "u1", CollectionID: "c1", CardID: "k1"},
		EaseFactor:     2.5,
		TotalReviews:   7,
		CorrectReviews: 4,
	}

	updated := flashcard.ComputeNextState(card, 4, now)

	assert.Equal(t, card.ProgressKey, updated.ProgressKey)
	assert.Equal(t, 7, updated.TotalReviews)
	assert.Equal(t, 4, updated.CorrectReviews)
}

func TestComputeNextState_Deterministic(t *testing.T) {
	card := models.CardProgress{EaseFactor: 2.36, Interval: 15, Repetitions: 3}

	assert.Equal(t, flashcard.ComputeNextState(card, 4, now), flashcard.ComputeNextState(card, 4, now))
}

func TestClampQuality(t *testing.T) {
	tests := []struct {
		in      int
		out     int
		clamped bool
	}{
		{in: -1, out: 0, clamped: true},
		{in: 0, out: 0},
		{in: 3, out: 3},
		{in: 5, out: 5},
		{in: 6, out: 5, clamped: true},
	}

	for _, tt := range tests {
		out, clamped := flashcard.ClampQuality(tt.in)
		assert.Equal(t, tt.out, out)
		assert.Equal(t, tt.clamped, clamped)
	}
}

func TestQualityFromScore(t *testing.T) {
	tests := []struct {
		in       float64
		out      int
		adjusted bool
	}{
		{in: 4, out: 4},
		{in: 4.7, out: 5, adjusted: true},
		{in: 2.4, out: 2, adjusted: true},
		{in: -0.4, out: 0, adjusted: true},
		{in: 1e20, out: 5, adjusted: true},
		{in: 99999999999999999999, out: 5, adjusted: true},
		{in: -1e20, out: 0, adjusted: true},
		{in: math.NaN(), out: 0, adjusted: true},
	}

	for _, tt := range tests {
		out, adjusted := flashcard.QualityFromScore(tt.in)
		assert.Equal(t, tt.out, out, "score %g", tt.in)
		assert.Equal(t, tt.adjusted, adjusted, "score %g", tt.in)
	}
}

func TestMarkMastered(t *testing.T) {
	card := models.CardProgress{
		EaseFactor:     1.9,
		Interval:       3,
		Repetitions:    1,
		TotalReviews:   9,
		CorrectReviews: 5,
	}

	updated := flashcard.MarkMastered(card, now)

	assert.Equal(t, 10, updated.Repetitions)
	assert.Equal(t, 365, updated.Interval)
	assert.Equal(t, now.AddDate(0, 0, 365), updated.NextReviewDate)
	assert.Equal(t, 1.9, updated.EaseFactor)
	assert.Equal(t, 9, updated.TotalReviews)
	assert.Equal(t, 5, updated.CorrectReviews)
	assert.Equal(t, flashcard.MasteryMastered, flashcard.Classify(updated.Repetitions))
}
