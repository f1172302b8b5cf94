package srs

import (
	"math/rand"
	"sort"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

// SelectDue filters cards down to those due at asOf and orders them for
// study: never-reviewed cards first, then ascending by next review date.
// The sort is stable, so callers control tie ordering by pre-sorting the
// input. A positive limit truncates the ordered result; it never changes
// which cards qualify.
func SelectDue(cards []domain.CardWithReview, asOf time.Time, limit int) []domain.Card {
	var due []domain.CardWithReview
	for _, c := range cards {
		if c.Latest == nil || !c.Latest.NextReview.After(asOf) {
			due = append(due, c)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].Latest, due[j].Latest
		if a == nil || b == nil {
			// A nil latest review sorts before any scheduled date.
			return a == nil && b != nil
		}
		return a.NextReview.Before(b.NextReview)
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	out := make([]domain.Card, len(due))
	for i, c := range due {
		out[i] = c.Card
	}
	return out
}

// SampleCram returns up to limit cards drawn uniformly at random,
// ignoring due dates entirely. It is selection-only: nothing about the
// sample feeds back into scheduling.
func SampleCram(cards []domain.Card, limit int, rng *rand.Rand) []domain.Card {
	sample := make([]domain.Card, len(cards))
	copy(sample, cards)
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	if limit > 0 && len(sample) > limit {
		sample = sample[:limit]
	}
	return sample
}
