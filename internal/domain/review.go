package domain

import "time"

// Quality is the learner's self-rated recall for one review.
// The numeric values are the grades fed into the scheduling recurrence.
type Quality int

const (
	Again Quality = 0
	Hard  Quality = 1
	Good  Quality = 2
	Easy  Quality = 3
)

// Valid reports whether q is one of the four defined grades.
func (q Quality) Valid() bool {
	return q >= Again && q <= Easy
}

// Correct reports whether q counts as a successful recall.
func (q Quality) Correct() bool {
	return q >= Good
}

func (q Quality) String() string {
	switch q {
	case Again:
		return "again"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return "unknown"
}

// ParseQuality maps a quality name back to its grade.
func ParseQuality(s string) (Quality, bool) {
	switch s {
	case "again":
		return Again, true
	case "hard":
		return Hard, true
	case "good":
		return Good, true
	case "easy":
		return Easy, true
	}
	return 0, false
}

// Status is the coarse lifecycle stage of a card. It is updated by the
// scheduler as an observable side effect and consumed by analytics; the
// interval recurrence itself never reads it.
type Status string

const (
	StatusNew        Status = "new"
	StatusLearning   Status = "learning"
	StatusReview     Status = "review"
	StatusRelearning Status = "relearning"
)

// Valid reports whether s is one of the four lifecycle stages.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReview, StatusRelearning:
		return true
	}
	return false
}

// ReviewState is the scheduling-relevant subset of a card's mutable state.
// Each application of the scheduler produces a new value; history is never
// mutated in place.
type ReviewState struct {
	Repetitions int     // consecutive successful reviews since the last lapse
	Interval    int     // days until the next review
	EaseFactor  float64 // growth multiplier, floored at 1.3
	Status      Status
	NextReview  *time.Time // nil until the card is first scheduled
}

// NewReviewState returns the state of a card that has never been reviewed.
func NewReviewState() ReviewState {
	return ReviewState{
		Repetitions: 0,
		Interval:    0,
		EaseFactor:  2.5,
		Status:      StatusNew,
		NextReview:  nil,
	}
}

// ReviewEvent records one application of the scheduler to one card.
// Events are append-only and immutable; a card's current ReviewState is
// fully derived from its most recent event.
type ReviewEvent struct {
	ID             string
	CardID         string
	Quality        Quality
	Repetitions    int
	Interval       int
	EaseFactor     float64
	Status         Status
	PreviousStatus Status // status immediately before this review
	NextReview     time.Time
	ReviewedAt     time.Time
	Practice       bool // practice receipts never affect scheduling
}

// State reconstructs the ReviewState the scheduler produced when this
// event was recorded. Feeding it back into the scheduler continues the
// card's history with no hidden state outside the event.
func (e *ReviewEvent) State() ReviewState {
	next := e.NextReview
	return ReviewState{
		Repetitions: e.Repetitions,
		Interval:    e.Interval,
		EaseFactor:  e.EaseFactor,
		Status:      e.Status,
		NextReview:  &next,
	}
}
