package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deckard-app/deckard/internal/domain"
)

// AppendReviewBatch writes a batch of review events in one transaction.
// Either every event in the batch lands in the ledger or none does, so a
// failed submission can never leave some cards scheduled and others not.
// Event IDs are assigned here; input order is preserved.
func (db *DB) AppendReviewBatch(ctx context.Context, events []domain.ReviewEvent) ([]domain.ReviewEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin review batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO review_events (
			id, card_id, quality, repetitions, interval_days, ease_factor,
			status, previous_status, next_review, reviewed_at, practice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare review insert: %w", err)
	}
	defer stmt.Close()

	out := make([]domain.ReviewEvent, len(events))
	for i, ev := range events {
		ev.ID = uuid.NewString()
		_, err := stmt.ExecContext(ctx,
			ev.ID, ev.CardID, int(ev.Quality), ev.Repetitions, ev.Interval,
			ev.EaseFactor, string(ev.Status), string(ev.PreviousStatus),
			ev.NextReview, ev.ReviewedAt, ev.Practice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to append review event for card %s: %w", ev.CardID, err)
		}
		out[i] = ev
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review batch: %w", err)
	}
	return out, nil
}

// LatestEvent retrieves the most recent scheduled review event for a
// card, or nil if the card has never been reviewed.
func (db *DB) LatestEvent(ctx context.Context, cardID string) (*domain.ReviewEvent, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, card_id, quality, repetitions, interval_days, ease_factor,
		       status, previous_status, next_review, reviewed_at, practice
		FROM review_events
		WHERE card_id = ? AND practice = 0
		ORDER BY reviewed_at DESC, id DESC
		LIMIT 1
	`, cardID)

	var ev domain.ReviewEvent
	var quality int
	var status, prev string
	err := row.Scan(
		&ev.ID, &ev.CardID, &quality, &ev.Repetitions, &ev.Interval,
		&ev.EaseFactor, &status, &prev, &ev.NextReview, &ev.ReviewedAt, &ev.Practice,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Never reviewed
		}
		return nil, fmt.Errorf("failed to find latest event for card %s: %w", cardID, err)
	}
	ev.Quality = domain.Quality(quality)
	ev.Status = domain.Status(status)
	ev.PreviousStatus = domain.Status(prev)
	return &ev, nil
}

// EventQuery narrows a scheduled-event query. The zero value selects the
// full ledger.
type EventQuery struct {
	DeckID string     // restrict to one deck when non-empty
	CardID string     // restrict to one card when non-empty
	From   *time.Time // inclusive lower bound on reviewed_at
	To     *time.Time // inclusive upper bound on reviewed_at
}

// Events retrieves scheduled (non-practice) review events matching the
// query, ordered by review time ascending.
func (db *DB) Events(ctx context.Context, q EventQuery) ([]domain.ReviewEvent, error) {
	query := `
		SELECT e.id, e.card_id, e.quality, e.repetitions, e.interval_days,
		       e.ease_factor, e.status, e.previous_status, e.next_review,
		       e.reviewed_at, e.practice
		FROM review_events e
	`
	var args []any
	where := "WHERE e.practice = 0"
	if q.DeckID != "" {
		query += " JOIN cards c ON c.id = e.card_id"
		where += " AND c.deck_id = ?"
		args = append(args, q.DeckID)
	}
	if q.CardID != "" {
		where += " AND e.card_id = ?"
		args = append(args, q.CardID)
	}
	if q.From != nil {
		where += " AND e.reviewed_at >= ?"
		args = append(args, *q.From)
	}
	if q.To != nil {
		where += " AND e.reviewed_at <= ?"
		args = append(args, *q.To)
	}
	query += " " + where + " ORDER BY e.reviewed_at, e.id"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review events: %w", err)
	}
	defer rows.Close()

	var events []domain.ReviewEvent
	for rows.Next() {
		var ev domain.ReviewEvent
		var quality int
		var status, prev string
		err := rows.Scan(
			&ev.ID, &ev.CardID, &quality, &ev.Repetitions, &ev.Interval,
			&ev.EaseFactor, &status, &prev, &ev.NextReview, &ev.ReviewedAt, &ev.Practice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review event row: %w", err)
		}
		ev.Quality = domain.Quality(quality)
		ev.Status = domain.Status(status)
		ev.PreviousStatus = domain.Status(prev)
		events = append(events, ev)
	}
	return events, rows.Err()
}
