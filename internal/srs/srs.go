// Package srs implements the spaced-repetition scheduler: a four-grade
// SM-2 variant that maps a card's prior review state and a quality rating
// to its next state and review date.
package srs

import (
	"math"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

const minEaseFactor = 1.3

// Policy holds the tunable parameters of the scheduler.
type Policy struct {
	// HardIsLapse controls whether a Hard rating resets repetitions like
	// Again does, or counts as a reduced-credit success.
	HardIsLapse bool
	// MaxIntervalDays caps interval growth.
	MaxIntervalDays int
}

// DefaultPolicy returns the scheduling policy used in production:
// Hard is a lapse, intervals cap at one year.
func DefaultPolicy() Policy {
	return Policy{
		HardIsLapse:     true,
		MaxIntervalDays: 365,
	}
}

// Apply advances a card's scheduling state by one review.
// It is pure and total: any combination of a well-formed prior state and
// one of the four grades produces a well-formed next state.
func (p Policy) Apply(prev domain.ReviewState, quality domain.Quality, now time.Time) domain.ReviewState {
	grade := int(quality)

	next := domain.ReviewState{
		EaseFactor: prev.EaseFactor,
	}

	lapse := grade == 0 || (grade == 1 && p.HardIsLapse)
	if lapse {
		next.Repetitions = 0
		// Again comes back the same day, Hard the next day.
		next.Interval = grade
	} else {
		next.Repetitions = prev.Repetitions + 1
		switch next.Repetitions {
		case 1:
			next.Interval = 1
		case 2:
			next.Interval = 6
		default:
			// Grown from the ease factor the card carried into this
			// review; the ease update below applies from the next one.
			next.Interval = int(math.Round(float64(prev.Interval) * prev.EaseFactor))
		}
		if p.MaxIntervalDays > 0 && next.Interval > p.MaxIntervalDays {
			next.Interval = p.MaxIntervalDays
		}
	}

	next.EaseFactor = nextEaseFactor(prev.EaseFactor, grade)
	next.Status = transition(prev.Status, lapse, next.Repetitions)

	due := startOfDay(now).AddDate(0, 0, next.Interval)
	next.NextReview = &due

	return next
}

// nextEaseFactor applies the SM-2 ease recurrence with grades scaled to
// the 0-3 range, floored at 1.3. The ease moves on every review, lapse
// or not: Again -0.32, Hard -0.14, Good +0, Easy +0.1.
func nextEaseFactor(ef float64, grade int) float64 {
	g := float64(grade)
	ef += 0.1 - (3-g)*(0.08+(3-g)*0.02)
	if ef < minEaseFactor {
		ef = minEaseFactor
	}
	return ef
}

// transition is the single place card status changes.
func transition(prev domain.Status, lapse bool, repetitions int) domain.Status {
	if lapse {
		// A card that has graduated before relearns; one that never
		// graduated is still learning.
		if prev == domain.StatusReview || prev == domain.StatusRelearning {
			return domain.StatusRelearning
		}
		return domain.StatusLearning
	}
	// The first success is the one-day learning step; from the second
	// consecutive success on, the card has graduated.
	if repetitions >= 2 {
		return domain.StatusReview
	}
	return domain.StatusLearning
}

// startOfDay truncates t to day granularity in its own location, so the
// scheduled date does not drift with the hour a review happens at.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
