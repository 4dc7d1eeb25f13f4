package srs

import (
	"math"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease update for a successful grade.
//
// The adjustment is EaseBonus - d*(EasePenaltyBase + d*EasePenaltyStep) where
// d = 5 - grade, so a grade of 5 raises the ease by 0.1, a 4 leaves it
// unchanged and a 3 lowers it by 0.14. The result never drops below
// params.MinEaseFactor. There is no upper bound.
func calculateNewEaseFactor(currentEF float64, grade domain.Grade, params *Params) float64 {
	d := float64(domain.MaxGrade - grade)
	newEF := currentEF + params.EaseBonus - d*(params.EasePenaltyBase+d*params.EasePenaltyStep)

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// calculateNewInterval determines the interval in days after a successful review.
//
// The first success yields params.FirstInterval, the second
// params.SecondInterval, and every later one multiplies the previous interval
// by the ease factor in effect before this review, rounded to the nearest day.
func calculateNewInterval(repetitions, currentInterval int, easeFactor float64, params *Params) int {
	switch repetitions {
	case 0:
		return params.FirstInterval
	case 1:
		return params.SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * easeFactor))
	}
}

// calculateNextState creates a new ReviewState with updated values based on the grade.
//
// The input state is never modified. Every review records the grade and time
// and counts towards TotalReviews. A failure (grade below 3) resets the
// repetition ladder and success streak, counts a lapse, keeps the ease factor
// and makes the item due again after params.RelearnDelay. A success extends the
// streak, moves one step up the interval ladder, updates the ease factor and
// makes the item due after the new interval.
func calculateNextState(
	state *domain.ReviewState,
	grade domain.Grade,
	now time.Time,
	params *Params,
) *domain.ReviewState {
	next := state.Clone()

	next.LastGrade = grade
	next.LastReviewedAt = now
	next.TotalReviews++
	next.UpdatedAt = now

	if !grade.IsSuccess() {
		next.Repetitions = 0
		next.IntervalDays = 0
		next.Lapses++
		next.SuccessStreak = 0
		next.DueAt = now.Add(params.RelearnDelay)
		return next
	}

	next.SuccessStreak++
	next.IntervalDays = calculateNewInterval(
		state.Repetitions,
		state.IntervalDays,
		state.EaseFactor,
		params,
	)
	next.Repetitions++
	next.EaseFactor = calculateNewEaseFactor(state.EaseFactor, grade, params)
	next.DueAt = now.Add(time.Duration(next.IntervalDays) * 24 * time.Hour)

	return next
}

// classify derives the status of a review state at the given time.
// The checks run in priority order new, mastered, due, learning.
func classify(state *domain.ReviewState, now time.Time, params *Params) Status {
	switch {
	case state.TotalReviews == 0:
		return StatusNew
	case state.IntervalDays >= params.MasteryInterval && state.SuccessStreak >= params.MasteryStreak:
		return StatusMastered
	case !state.DueAt.After(now):
		return StatusDue
	default:
		return StatusLearning
	}
}
