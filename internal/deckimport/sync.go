package deckimport

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/deckard-app/deckard/internal/domain"
	"github.com/deckard-app/deckard/internal/storage"
)

// RunSync reconciles every configured source: git sources are cloned or
// pulled into reposDir first, then each markdown file becomes a deck and
// its Q:/A: blocks become cards.
func RunSync(ctx context.Context, db *storage.DB, reposDir string) error {
	slog.Info("Starting sync process for all sources...")
	sources, err := db.GetAllSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return nil
	}

	if err := os.MkdirAll(reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "kind", source.Kind, "path", source.Path)

		scanPath := source.Path
		if source.Kind == "git" {
			localRepoPath, err := localPathForRepo(reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := syncGit(source.Path, localRepoPath); err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				continue
			}
			scanPath = localRepoPath
		}

		Reconcile(ctx, db, source, scanPath)
	}
	slog.Info("Sync process complete.")
	return nil
}

// Reconcile walks a source directory and brings the database in line with
// it: new cards are inserted, cards whose text disappeared are deleted
// (their review history goes with them), and decks whose file vanished
// are removed.
func Reconcile(ctx context.Context, db *storage.DB, source storage.Source, scanPath string) {
	foundHashes := make(map[string]bool)
	foundDecks := make(map[string]bool)
	var parseErrors []error
	parsedCards := 0

	walkErr := filepath.WalkDir(scanPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileCards, parseErr := ParseFile(path)
		if parseErr != nil {
			parseErrors = append(parseErrors, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}

		deckName := deckNameFor(path)
		deck, err := db.UpsertDeck(ctx, deckName, source.ID)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("deck upsert for %s: %w", deckName, err))
			return nil
		}
		foundDecks[deck.ID] = true

		for _, pc := range fileCards {
			hash := Hash(pc)
			parsedCards++
			foundHashes[hash] = true

			existing, findErr := db.FindCardByHash(ctx, hash)
			if findErr != nil {
				parseErrors = append(parseErrors, fmt.Errorf("db check for %s: %w", hash, findErr))
				continue
			}
			if existing == nil {
				slog.Info("New card found, inserting...", "deck", deckName, "hash", hash)
				_, insertErr := db.InsertCard(ctx, domain.Card{
					DeckID:      deck.ID,
					Front:       pc.Front,
					Back:        pc.Back,
					ContentHash: hash,
				})
				if insertErr != nil {
					parseErrors = append(parseErrors, fmt.Errorf("db insert for %s: %w", hash, insertErr))
				}
			}
		}
		return nil
	})

	if walkErr != nil {
		slog.Error("Error walking directory", "path", scanPath, "error", walkErr)
		return
	}

	orphanedCards, orphanedDecks := pruneOrphans(ctx, db, source, foundHashes, foundDecks)

	if err := db.UpdateSourceLastScanned(ctx, source.ID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", source.ID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", scanPath,
		"parsed_cards", parsedCards,
		"orphaned_cards_deleted", orphanedCards,
		"orphaned_decks_deleted", orphanedDecks,
		"errors", len(parseErrors),
	)
}

// pruneOrphans removes cards and decks of the source that no longer
// exist on disk.
func pruneOrphans(ctx context.Context, db *storage.DB, source storage.Source, foundHashes, foundDecks map[string]bool) (cards, decks int) {
	dbDecks, err := db.DecksBySource(ctx, source.ID)
	if err != nil {
		slog.Error("Error getting decks for source", "source_id", source.ID, "error", err)
		return 0, 0
	}

	for _, deck := range dbDecks {
		if !foundDecks[deck.ID] {
			slog.Info("Orphaned deck, deleting", "deck", deck.Name)
			if err := db.DeleteDeck(ctx, deck.ID); err != nil {
				slog.Warn("Failed to delete orphaned deck", "deck", deck.Name, "error", err)
				continue
			}
			decks++
			continue
		}

		dbCards, err := db.CardsByDeck(ctx, deck.ID)
		if err != nil {
			slog.Error("Error getting cards for deck", "deck", deck.Name, "error", err)
			continue
		}
		for _, card := range dbCards {
			if !foundHashes[card.ContentHash] {
				slog.Info("Orphaned card, deleting", "hash", card.ContentHash)
				if err := db.DeleteCardByHash(ctx, card.ContentHash); err != nil {
					slog.Warn("Failed to delete orphaned card", "hash", card.ContentHash, "error", err)
					continue
				}
				cards++
			}
		}
	}
	return cards, decks
}

// SourceKind classifies a source path as a git URL or a local directory.
func SourceKind(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return "git"
	}
	return "local"
}

// deckNameFor derives the deck name from a deck file path.
func deckNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// localPathForRepo maps a git URL to a stable checkout location under
// baseDir.
func localPathForRepo(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-style URLs: git@host:owner/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
