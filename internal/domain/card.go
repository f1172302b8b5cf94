package domain

import "time"

// Deck is a named collection of cards, backed by one markdown file in a source.
type Deck struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Card represents a single question-answer entry belonging to one deck.
// ContentHash identifies the card across syncs: editing the text produces a
// new card, which starts over with fresh scheduling state.
type Card struct {
	ID          string
	DeckID      string
	Front       string
	Back        string
	ContentHash string
	CreatedAt   time.Time
}

// CardWithReview pairs a card with its most recent scheduled review event,
// or nil if the card has never been reviewed.
type CardWithReview struct {
	Card   Card
	Latest *ReviewEvent
}
