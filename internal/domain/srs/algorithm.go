package srs

import (
	"math"
	"time"

	"github.com/phrazzld/studydeck/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease adjustment for quality q.
//
// The adjustment is 0.1 - (5-q)*(0.08 + (5-q)*0.02): +0.10 for a perfect
// grade, 0 for q=4, -0.14 for q=3 and down to -0.80 for a blackout. The result
// is always recomputed and then clamped to params.MinEaseFactor, even when the
// current value already sits on the floor.
func calculateNewEaseFactor(currentEF float64, q domain.Quality, params *Params) float64 {
	distance := float64(domain.MaxQuality - q)
	newEF := currentEF + (0.1 - distance*(0.08+distance*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	return newEF
}

// calculateNewInterval determines the next interval in days.
//
// A lapse resets to params.LapseInterval. A passing grade graduates through
// FirstInterval and SecondInterval for the first two repetitions of a streak,
// then grows geometrically by the card's current ease factor.
func calculateNewInterval(state domain.SchedulingState, q domain.Quality, params *Params) int {
	if q < params.PassingQuality {
		return params.LapseInterval
	}

	var interval int
	switch state.RepetitionCount {
	case 0:
		interval = params.FirstInterval
	case 1:
		interval = params.SecondInterval
	default:
		interval = int(math.Round(float64(state.Interval) * state.EaseFactor))
	}

	// Stored state from older data may carry a zero interval
	if interval < 1 {
		interval = 1
	}
	return interval
}

// calculateNextReviewDate schedules the card interval calendar days after now.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextSchedule runs the full transition for one grading event.
// It reads only its arguments and never a process-wide clock.
func calculateNextSchedule(
	state domain.SchedulingState,
	q domain.Quality,
	now time.Time,
	params *Params,
) domain.Schedule {
	next := domain.SchedulingState{
		Interval:   calculateNewInterval(state, q, params),
		EaseFactor: calculateNewEaseFactor(state.EaseFactor, q, params),
	}

	if q >= params.PassingQuality {
		next.RepetitionCount = state.RepetitionCount + 1
	} else {
		next.RepetitionCount = 0
	}

	return domain.Schedule{
		SchedulingState: next,
		NextReviewAt:    calculateNextReviewDate(next.Interval, now),
	}
}
