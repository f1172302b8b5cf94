package srs

import (
	"math/rand"
	"testing"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

func cardWithDue(id string, due time.Time) domain.CardWithReview {
	return domain.CardWithReview{
		Card:   domain.Card{ID: id},
		Latest: &domain.ReviewEvent{CardID: id, NextReview: due},
	}
}

func TestSelectDue(t *testing.T) {
	asOf := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("filters on the due boundary", func(t *testing.T) {
		cards := []domain.CardWithReview{
			cardWithDue("past", asOf.AddDate(0, 0, -2)),
			cardWithDue("exact", asOf),
			cardWithDue("future", asOf.Add(time.Minute)),
		}

		got := SelectDue(cards, asOf, 0)

		if len(got) != 2 {
			t.Fatalf("Expected 2 due cards, got %d", len(got))
		}
		for _, c := range got {
			if c.ID == "future" {
				t.Errorf("Card due after asOf must not be selected")
			}
		}
	})

	t.Run("never-reviewed cards sort first", func(t *testing.T) {
		cards := []domain.CardWithReview{
			cardWithDue("overdue", asOf.AddDate(0, 0, -30)),
			{Card: domain.Card{ID: "fresh"}},
		}

		got := SelectDue(cards, asOf, 0)

		if len(got) != 2 || got[0].ID != "fresh" {
			t.Errorf("Expected never-reviewed card first, got %v", got)
		}
	})

	t.Run("orders ascending by due date", func(t *testing.T) {
		cards := []domain.CardWithReview{
			cardWithDue("b", asOf.AddDate(0, 0, -1)),
			cardWithDue("c", asOf),
			cardWithDue("a", asOf.AddDate(0, 0, -5)),
		}

		got := SelectDue(cards, asOf, 0)

		want := []string{"a", "b", "c"}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
			}
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		due := asOf.AddDate(0, 0, -1)
		cards := []domain.CardWithReview{
			cardWithDue("first", due),
			cardWithDue("second", due),
			cardWithDue("third", due),
		}

		got := SelectDue(cards, asOf, 0)

		want := []string{"first", "second", "third"}
		for i, id := range want {
			if got[i].ID != id {
				t.Errorf("Position %d: expected %s, got %s", i, id, got[i].ID)
			}
		}
	})

	t.Run("limit truncates after ordering", func(t *testing.T) {
		cards := []domain.CardWithReview{
			cardWithDue("late", asOf.AddDate(0, 0, -1)),
			cardWithDue("early", asOf.AddDate(0, 0, -9)),
			cardWithDue("future", asOf.AddDate(0, 0, 9)),
		}

		got := SelectDue(cards, asOf, 1)

		if len(got) != 1 || got[0].ID != "early" {
			t.Errorf("Expected the earliest due card only, got %v", got)
		}
	})

	t.Run("empty input yields empty result", func(t *testing.T) {
		if got := SelectDue(nil, asOf, 10); len(got) != 0 {
			t.Errorf("Expected no cards, got %v", got)
		}
	})
}

func TestSampleCram(t *testing.T) {
	cards := []domain.Card{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}

	t.Run("samples without duplicates", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		got := SampleCram(cards, 3, rng)

		if len(got) != 3 {
			t.Fatalf("Expected 3 cards, got %d", len(got))
		}
		seen := map[string]bool{}
		for _, c := range got {
			if seen[c.ID] {
				t.Errorf("Card %s sampled twice", c.ID)
			}
			seen[c.ID] = true
		}
	})

	t.Run("limit above population returns everything", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		got := SampleCram(cards, 50, rng)
		if len(got) != len(cards) {
			t.Errorf("Expected all %d cards, got %d", len(cards), len(got))
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		SampleCram(cards, 5, rng)
		want := []string{"a", "b", "c", "d", "e"}
		for i, id := range want {
			if cards[i].ID != id {
				t.Errorf("Input order changed at %d: got %s", i, cards[i].ID)
			}
		}
	})
}
