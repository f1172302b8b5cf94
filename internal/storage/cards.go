package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deckard-app/deckard/internal/domain"
)

// InsertCard stores a new card. The caller supplies deck and content;
// the row gets a fresh ID and creation time.
func (db *DB) InsertCard(ctx context.Context, card domain.Card) (domain.Card, error) {
	card.ID = uuid.NewString()
	card.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO cards (id, deck_id, front, back, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, card.ID, card.DeckID, card.Front, card.Back, card.ContentHash, card.CreatedAt)
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to insert card %s: %w", card.ContentHash, err)
	}
	return card, nil
}

// FindCard retrieves a card by ID, or nil if it does not exist.
func (db *DB) FindCard(ctx context.Context, id string) (*domain.Card, error) {
	return db.scanCard(db.conn.QueryRowContext(ctx, `
		SELECT id, deck_id, front, back, content_hash, created_at
		FROM cards WHERE id = ?
	`, id), id)
}

// FindCardByHash retrieves a card by its content hash, or nil if absent.
func (db *DB) FindCardByHash(ctx context.Context, hash string) (*domain.Card, error) {
	return db.scanCard(db.conn.QueryRowContext(ctx, `
		SELECT id, deck_id, front, back, content_hash, created_at
		FROM cards WHERE content_hash = ?
	`, hash), hash)
}

func (db *DB) scanCard(row *sql.Row, key string) (*domain.Card, error) {
	var c domain.Card
	err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.ContentHash, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %s: %w", key, err)
	}
	return &c, nil
}

// CardsByDeck retrieves all cards of a deck ordered by creation time.
func (db *DB) CardsByDeck(ctx context.Context, deckID string) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, deck_id, front, back, content_hash, created_at
		FROM cards WHERE deck_id = ?
		ORDER BY created_at, id
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()
	return scanCards(rows)
}

// DeleteCardByHash removes a card; its review history cascades.
func (db *DB) DeleteCardByHash(ctx context.Context, hash string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE content_hash = ?`, hash); err != nil {
		return fmt.Errorf("failed to delete card with hash %s: %w", hash, err)
	}
	return nil
}

// CardsWithLatestReview retrieves every card of a deck paired with its
// most recent scheduled (non-practice) review event, ordered by card
// creation so due-set tie-breaks are deterministic.
func (db *DB) CardsWithLatestReview(ctx context.Context, deckID string) ([]domain.CardWithReview, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.id, c.deck_id, c.front, c.back, c.content_hash, c.created_at,
		       e.id, e.card_id, e.quality, e.repetitions, e.interval_days,
		       e.ease_factor, e.status, e.previous_status, e.next_review,
		       e.reviewed_at, e.practice
		FROM cards c
		LEFT JOIN review_events e ON e.id = (
			SELECT id FROM review_events
			WHERE card_id = c.id AND practice = 0
			ORDER BY reviewed_at DESC, id DESC
			LIMIT 1
		)
		WHERE c.deck_id = ?
		ORDER BY c.created_at, c.id
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards with latest review for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var out []domain.CardWithReview
	for rows.Next() {
		var c domain.Card
		var (
			evID, evCardID, evStatus, evPrev sql.NullString
			evQuality, evReps, evInterval    sql.NullInt64
			evEase                           sql.NullFloat64
			evNext, evReviewedAt             sql.NullTime
			evPractice                       sql.NullBool
		)
		err := rows.Scan(
			&c.ID, &c.DeckID, &c.Front, &c.Back, &c.ContentHash, &c.CreatedAt,
			&evID, &evCardID, &evQuality, &evReps, &evInterval,
			&evEase, &evStatus, &evPrev, &evNext, &evReviewedAt, &evPractice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card with review row: %w", err)
		}

		cw := domain.CardWithReview{Card: c}
		if evID.Valid {
			cw.Latest = &domain.ReviewEvent{
				ID:             evID.String,
				CardID:         evCardID.String,
				Quality:        domain.Quality(evQuality.Int64),
				Repetitions:    int(evReps.Int64),
				Interval:       int(evInterval.Int64),
				EaseFactor:     evEase.Float64,
				Status:         domain.Status(evStatus.String),
				PreviousStatus: domain.Status(evPrev.String),
				NextReview:     evNext.Time,
				ReviewedAt:     evReviewedAt.Time,
				Practice:       evPractice.Bool,
			}
		}
		out = append(out, cw)
	}
	return out, rows.Err()
}

// CardDeckMap maps every card ID to its deck ID.
func (db *DB) CardDeckMap(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, deck_id FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("failed to map cards to decks: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var cardID, deckID string
		if err := rows.Scan(&cardID, &deckID); err != nil {
			return nil, fmt.Errorf("failed to scan card-deck row: %w", err)
		}
		m[cardID] = deckID
	}
	return m, rows.Err()
}

func scanCards(rows *sql.Rows) ([]domain.Card, error) {
	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.ContentHash, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
