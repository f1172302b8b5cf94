package storage

const schema = `
-- Sources track where decks come from: a local directory or a git URL.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL, -- 'local' or 'git'
    last_scanned DATETIME
);

-- Decks group cards; each deck is backed by one markdown file in a source.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    source_id INTEGER,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- Cards are identified across syncs by the hash of their normalized content.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    deck_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    content_hash TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- The append-only review ledger. A card's current scheduling state is its
-- most recent row with practice = 0; rows are never updated in place.
CREATE TABLE IF NOT EXISTS review_events (
    id TEXT PRIMARY KEY,
    card_id TEXT NOT NULL,
    quality INTEGER NOT NULL,
    repetitions INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    ease_factor REAL NOT NULL,
    status TEXT NOT NULL,
    previous_status TEXT NOT NULL,
    next_review DATETIME NOT NULL,
    reviewed_at DATETIME NOT NULL,
    practice INTEGER NOT NULL DEFAULT 0,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_review_events_card
    ON review_events(card_id, reviewed_at);
CREATE INDEX IF NOT EXISTS idx_review_events_reviewed_at
    ON review_events(reviewed_at);
`
