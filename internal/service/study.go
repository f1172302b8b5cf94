package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
	"github.com/deckard-app/deckard/internal/srs"
	"github.com/deckard-app/deckard/internal/stats"
	"github.com/deckard-app/deckard/internal/storage"
)

// StudyService serves read-only study queries: due sets, practice
// samples and statistics.
type StudyService struct {
	db               *storage.DB
	loc              *time.Location
	secondsPerReview int
	rng              *rand.Rand
}

// NewStudyService creates a StudyService. loc is the calendar used for
// all date bucketing; a nil loc means local time.
func NewStudyService(db *storage.DB, loc *time.Location, secondsPerReview int) *StudyService {
	if loc == nil {
		loc = time.Local
	}
	return &StudyService{
		db:               db,
		loc:              loc,
		secondsPerReview: secondsPerReview,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DueCards returns the deck's cards due now, ordered for study. A zero
// limit returns the whole due set.
func (s *StudyService) DueCards(ctx context.Context, deckID string, limit int) ([]domain.Card, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.db.CardsWithLatestReview(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return srs.SelectDue(cards, time.Now(), limit), nil
}

// Practice returns a random sample of the deck's cards, ignoring due
// dates entirely.
func (s *StudyService) Practice(ctx context.Context, deckID string, limit int) ([]domain.Card, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if err := s.requireDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.db.CardsByDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return srs.SampleCram(cards, limit, s.rng), nil
}

// SessionStats summarizes a deck's reviews inside an explicit window.
func (s *StudyService) SessionStats(ctx context.Context, deckID string, from, to time.Time) (stats.SessionStats, error) {
	if to.Before(from) {
		return stats.SessionStats{}, ErrInvalidRange
	}
	if err := s.requireDeck(ctx, deckID); err != nil {
		return stats.SessionStats{}, err
	}
	events, err := s.db.Events(ctx, storage.EventQuery{DeckID: deckID, From: &from, To: &to})
	if err != nil {
		return stats.SessionStats{}, err
	}
	return stats.Session(events, from, to), nil
}

// CardStats summarizes a single card's review history inside an
// explicit window.
func (s *StudyService) CardStats(ctx context.Context, cardID string, from, to time.Time) (stats.SessionStats, error) {
	if to.Before(from) {
		return stats.SessionStats{}, ErrInvalidRange
	}
	card, err := s.db.FindCard(ctx, cardID)
	if err != nil {
		return stats.SessionStats{}, err
	}
	if card == nil {
		return stats.SessionStats{}, fmt.Errorf("card %s: %w", cardID, ErrCardNotFound)
	}
	events, err := s.db.Events(ctx, storage.EventQuery{CardID: cardID, From: &from, To: &to})
	if err != nil {
		return stats.SessionStats{}, err
	}
	return stats.Session(events, from, to), nil
}

// NamedRange is a caller-friendly time window: the trailing week, month
// or year ending now.
type NamedRange string

const (
	RangeWeek  NamedRange = "week"
	RangeMonth NamedRange = "month"
	RangeYear  NamedRange = "year"
)

// Resolve turns the named range into explicit bounds ending at now.
func (r NamedRange) Resolve(now time.Time) (from, to time.Time, err error) {
	var days int
	switch r {
	case RangeWeek:
		days = 7
	case RangeMonth:
		days = 30
	case RangeYear:
		days = 365
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown range %q: %w", string(r), ErrInvalidRange)
	}
	return now.AddDate(0, 0, -(days - 1)), now, nil
}

// RangeStats summarizes a deck's review activity over [from, to]. An
// empty deckID aggregates over all decks.
func (s *StudyService) RangeStats(ctx context.Context, deckID string, from, to time.Time) (stats.RangeStats, error) {
	if to.Before(from) {
		return stats.RangeStats{}, ErrInvalidRange
	}
	if deckID != "" {
		if err := s.requireDeck(ctx, deckID); err != nil {
			return stats.RangeStats{}, err
		}
	}
	events, err := s.db.Events(ctx, storage.EventQuery{DeckID: deckID, From: &from, To: &to})
	if err != nil {
		return stats.RangeStats{}, err
	}
	return stats.Range(events, from, to, s.loc, s.secondsPerReview), nil
}

// UserStats aggregates the full review history across all decks.
func (s *StudyService) UserStats(ctx context.Context) (stats.UserStats, error) {
	events, err := s.db.Events(ctx, storage.EventQuery{})
	if err != nil {
		return stats.UserStats{}, err
	}
	return stats.User(events, time.Now(), s.loc), nil
}

// RecentActivity returns the newest study sessions and deck creations.
func (s *StudyService) RecentActivity(ctx context.Context, limit int) ([]stats.FeedEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	events, err := s.db.Events(ctx, storage.EventQuery{})
	if err != nil {
		return nil, err
	}
	deckOf, err := s.db.CardDeckMap(ctx)
	if err != nil {
		return nil, err
	}
	decks, err := s.db.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	return stats.RecentActivity(events, deckOf, decks, limit, s.loc), nil
}

func (s *StudyService) requireDeck(ctx context.Context, deckID string) error {
	deck, err := s.db.FindDeck(ctx, deckID)
	if err != nil {
		return err
	}
	if deck == nil {
		return fmt.Errorf("deck %s: %w", deckID, ErrDeckNotFound)
	}
	return nil
}
