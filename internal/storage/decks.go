package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/deckard-app/deckard/internal/domain"
)

// UpsertDeck finds the deck with the given name, creating it if it does
// not exist yet, and associates it with the source.
func (db *DB) UpsertDeck(ctx context.Context, name string, sourceID int64) (domain.Deck, error) {
	deck, err := db.FindDeckByName(ctx, name)
	if err != nil {
		return domain.Deck{}, err
	}
	if deck != nil {
		return *deck, nil
	}

	created := domain.Deck{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO decks (id, name, source_id, created_at)
		VALUES (?, ?, ?, ?)
	`, created.ID, created.Name, sourceID, created.CreatedAt)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	return created, nil
}

// FindDeck retrieves a deck by its ID, or nil if it does not exist.
func (db *DB) FindDeck(ctx context.Context, id string) (*domain.Deck, error) {
	return db.scanDeck(db.conn.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM decks WHERE id = ?
	`, id), id)
}

// FindDeckByName retrieves a deck by its name, or nil if it does not exist.
func (db *DB) FindDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	return db.scanDeck(db.conn.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM decks WHERE name = ?
	`, name), name)
}

func (db *DB) scanDeck(row *sql.Row, key string) (*domain.Deck, error) {
	var d domain.Deck
	err := row.Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Deck not found
		}
		return nil, fmt.Errorf("failed to find deck %s: %w", key, err)
	}
	return &d, nil
}

// ListDecks retrieves all decks ordered by name.
func (db *DB) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, created_at FROM decks ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DecksBySource retrieves the decks belonging to a source.
func (db *DB) DecksBySource(ctx context.Context, sourceID int64) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, created_at FROM decks WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get decks for source %d: %w", sourceID, err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// DeleteDeck removes a deck; its cards and their review history cascade.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	return nil
}
