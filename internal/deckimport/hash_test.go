package deckimport

import "testing"

func TestNormalize(t *testing.T) {
	card := ParsedCard{
		Front: "  What is HTMX? \r\n",
		Back:  "A library for AJAX.",
	}
	expected := "what is htmx?\na library for ajax."
	normalized := Normalize(card)

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		card := ParsedCard{Front: "Q", Back: "A"}
		// Hash for "q\na"
		expectedHash := "27d2d5c8276a1f606af38834a9294ae5d3bfc6c5097c03e3fdd6e8c5c37e2ba7"
		hash := Hash(card)

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		card1 := ParsedCard{Front: "Test"}
		card2 := ParsedCard{Front: "Test"}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes for identical cards to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		card1 := ParsedCard{
			Front: "  what is go? ",
			Back:  "A programming language.",
		}
		card2 := ParsedCard{
			Front: "What Is Go?",
			Back:  "A programming language.",
		}
		if Hash(card1) != Hash(card2) {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different cards have different hashes", func(t *testing.T) {
		card1 := ParsedCard{Front: "Card 1"}
		card2 := ParsedCard{Front: "Card 2"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected hashes for different cards to be different")
		}
	})

	t.Run("field boundaries matter", func(t *testing.T) {
		card1 := ParsedCard{Front: "question", Back: "answer"}
		card2 := ParsedCard{Front: "questionanswer"}
		if Hash(card1) == Hash(card2) {
			t.Error("Expected front/back split to affect the hash")
		}
	})
}
