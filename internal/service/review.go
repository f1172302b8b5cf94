package service

import (
	"context"
	"fmt"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
	"github.com/deckard-app/deckard/internal/srs"
	"github.com/deckard-app/deckard/internal/storage"
)

// ReviewService handles review submission: it loads each card's current
// scheduling state, applies the scheduler, and appends the resulting
// events to the ledger as one atomic batch.
type ReviewService struct {
	db     *storage.DB
	policy srs.Policy
}

// NewReviewService creates a ReviewService with the given scheduling policy.
func NewReviewService(db *storage.DB, policy srs.Policy) *ReviewService {
	return &ReviewService{db: db, policy: policy}
}

// ReviewInput is one rated card in a submission.
type ReviewInput struct {
	CardID  string
	Quality domain.Quality
}

// SubmitRequest is a batch of reviews submitted together. A zero
// ReviewedAt means now. Practice submissions are recorded as receipts
// only and never change a card's scheduling state.
type SubmitRequest struct {
	Reviews    []ReviewInput
	ReviewedAt time.Time
	Practice   bool
}

// ReviewResult reports the scheduling state a card ended up in.
type ReviewResult struct {
	CardID string
	State  domain.ReviewState
}

// Submit applies a batch of reviews. Either every review in the batch is
// persisted or none is.
func (s *ReviewService) Submit(ctx context.Context, req SubmitRequest) ([]ReviewResult, error) {
	if len(req.Reviews) == 0 {
		return nil, ErrEmptyBatch
	}
	reviewedAt := req.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now()
	}

	events := make([]domain.ReviewEvent, 0, len(req.Reviews))
	results := make([]ReviewResult, 0, len(req.Reviews))

	for _, in := range req.Reviews {
		if !in.Quality.Valid() {
			return nil, fmt.Errorf("card %s: %w", in.CardID, ErrInvalidQuality)
		}
		card, err := s.db.FindCard(ctx, in.CardID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, fmt.Errorf("card %s: %w", in.CardID, ErrCardNotFound)
		}

		prev := domain.NewReviewState()
		if latest, err := s.db.LatestEvent(ctx, in.CardID); err != nil {
			return nil, err
		} else if latest != nil {
			prev = latest.State()
		}

		var ev domain.ReviewEvent
		var next domain.ReviewState
		if req.Practice {
			// A practice receipt freezes the current state.
			next = prev
			ev = practiceEvent(in, prev, reviewedAt)
		} else {
			next = s.policy.Apply(prev, in.Quality, reviewedAt)
			ev = domain.ReviewEvent{
				CardID:         in.CardID,
				Quality:        in.Quality,
				Repetitions:    next.Repetitions,
				Interval:       next.Interval,
				EaseFactor:     next.EaseFactor,
				Status:         next.Status,
				PreviousStatus: prev.Status,
				NextReview:     *next.NextReview,
				ReviewedAt:     reviewedAt,
			}
		}

		events = append(events, ev)
		results = append(results, ReviewResult{CardID: in.CardID, State: next})
	}

	if _, err := s.db.AppendReviewBatch(ctx, events); err != nil {
		return nil, err
	}
	return results, nil
}

// practiceEvent records a practice review without advancing scheduling:
// the event carries the card's unchanged state and is flagged so every
// scheduling and analytics query skips it.
func practiceEvent(in ReviewInput, state domain.ReviewState, reviewedAt time.Time) domain.ReviewEvent {
	nextReview := reviewedAt
	if state.NextReview != nil {
		nextReview = *state.NextReview
	}
	return domain.ReviewEvent{
		CardID:         in.CardID,
		Quality:        in.Quality,
		Repetitions:    state.Repetitions,
		Interval:       state.Interval,
		EaseFactor:     state.EaseFactor,
		Status:         state.Status,
		PreviousStatus: state.Status,
		NextReview:     nextReview,
		ReviewedAt:     reviewedAt,
		Practice:       true,
	}
}
