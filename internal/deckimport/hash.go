package deckimport

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize concatenates the card's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each
// field before joining them.
func Normalize(card ParsedCard) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with a newline so fields stay separated; "question" and
	// "answer" must not hash the same as "questionanswer".
	return strings.Join([]string{normalizePart(card.Front), normalizePart(card.Back)}, "\n")
}

// Hash takes a card, normalizes it, and returns its SHA-256 hash as a hex
// string. The hash is the card's identity across syncs.
func Hash(card ParsedCard) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
