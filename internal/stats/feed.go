package stats

import (
	"sort"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

// FeedEntry is one row in the recent activity feed: either a per-deck,
// per-day study session or a deck creation.
type FeedEntry struct {
	Seq      int       `json:"seq"`  // 1-based position after truncation
	Kind     string    `json:"kind"` // "session" or "deck_created"
	DeckID   string    `json:"deckId"`
	DeckName string    `json:"deckName"`
	Date     string    `json:"date"`    // calendar date of the entry in the caller's location
	Reviews  int       `json:"reviews"` // 0 for deck_created entries
	At       time.Time `json:"at"`
}

const (
	FeedSession     = "session"
	FeedDeckCreated = "deck_created"
)

// RecentActivity groups review events into per-(deck, calendar-date)
// sessions, merges deck creation events, and returns the newest entries
// first. deckOf maps card IDs to their deck; events with no known deck
// are skipped. A positive limit truncates the merged feed; entries are
// renumbered sequentially afterwards.
func RecentActivity(events []domain.ReviewEvent, deckOf map[string]string, decks []domain.Deck, limit int, loc *time.Location) []FeedEntry {
	names := make(map[string]string, len(decks))
	for _, d := range decks {
		names[d.ID] = d.Name
	}

	type sessionKey struct {
		deckID string
		date   string
	}
	sessions := make(map[sessionKey]*FeedEntry)
	// First-seen session order keeps the pre-sort input deterministic, so
	// entries sharing a timestamp tie-break the same way on every call.
	var order []sessionKey
	for _, ev := range events {
		deckID, ok := deckOf[ev.CardID]
		if !ok {
			continue
		}
		key := sessionKey{deckID: deckID, date: DateKey(ev.ReviewedAt, loc)}
		entry, ok := sessions[key]
		if !ok {
			entry = &FeedEntry{
				Kind:     FeedSession,
				DeckID:   deckID,
				DeckName: names[deckID],
				Date:     key.date,
				At:       ev.ReviewedAt,
			}
			sessions[key] = entry
			order = append(order, key)
		}
		entry.Reviews++
		// The session starts at its earliest review.
		if ev.ReviewedAt.Before(entry.At) {
			entry.At = ev.ReviewedAt
		}
	}

	feed := make([]FeedEntry, 0, len(order)+len(decks))
	for _, key := range order {
		feed = append(feed, *sessions[key])
	}
	for _, d := range decks {
		feed = append(feed, FeedEntry{
			Kind:     FeedDeckCreated,
			DeckID:   d.ID,
			DeckName: d.Name,
			Date:     DateKey(d.CreatedAt, loc),
			At:       d.CreatedAt,
		})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].At.After(feed[j].At)
	})

	if limit > 0 && len(feed) > limit {
		feed = feed[:limit]
	}
	for i := range feed {
		feed[i].Seq = i + 1
	}
	return feed
}
