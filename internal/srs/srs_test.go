package srs

import (
	"math"
	"testing"
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestApplyFirstReview(t *testing.T) {
	p := DefaultPolicy()
	now := day(0)

	state := p.Apply(domain.NewReviewState(), domain.Good, now)

	if state.Repetitions != 1 {
		t.Errorf("Expected repetitions 1, got %d", state.Repetitions)
	}
	if state.Interval != 1 {
		t.Errorf("Expected interval 1, got %d", state.Interval)
	}
	if state.Status != domain.StatusLearning {
		t.Errorf("Expected status learning, got %s", state.Status)
	}
	if math.Abs(state.EaseFactor-2.5) > 1e-9 {
		t.Errorf("Expected ease factor to stay 2.5 on Good, got %.4f", state.EaseFactor)
	}
	if state.NextReview == nil || !state.NextReview.Equal(day(1)) {
		t.Errorf("Expected next review on %v, got %v", day(1), state.NextReview)
	}
}

func TestApplyGoodSequence(t *testing.T) {
	p := DefaultPolicy()
	state := domain.NewReviewState()

	wantIntervals := []int{1, 6, 15, 38, 95}
	prev := 0
	for i, want := range wantIntervals {
		state = p.Apply(state, domain.Good, day(i*10))
		if state.Interval != want {
			t.Errorf("Review %d: expected interval %d, got %d", i+1, want, state.Interval)
		}
		if state.Interval < prev {
			t.Errorf("Review %d: interval shrank from %d to %d", i+1, prev, state.Interval)
		}
		prev = state.Interval
	}
	if state.Status != domain.StatusReview {
		t.Errorf("Expected status review after graduation, got %s", state.Status)
	}
}

func TestApplyGraduatedCard(t *testing.T) {
	// A card at repetitions 2, interval 6, ease 2.5 reviewed Good on day 10
	// lands on day 25 with interval round(6*2.5)=15.
	p := DefaultPolicy()
	next := day(10)
	prev := domain.ReviewState{
		Repetitions: 2,
		Interval:    6,
		EaseFactor:  2.5,
		Status:      domain.StatusReview,
		NextReview:  &next,
	}

	state := p.Apply(prev, domain.Good, day(10))

	if state.Repetitions != 3 {
		t.Errorf("Expected repetitions 3, got %d", state.Repetitions)
	}
	if state.Interval != 15 {
		t.Errorf("Expected interval 15, got %d", state.Interval)
	}
	if math.Abs(state.EaseFactor-2.5) > 1e-9 {
		t.Errorf("Expected ease factor 2.5, got %.4f", state.EaseFactor)
	}
	if !state.NextReview.Equal(day(25)) {
		t.Errorf("Expected next review on %v, got %v", day(25), state.NextReview)
	}
}

func TestApplyEaseFactor(t *testing.T) {
	p := DefaultPolicy()
	start := domain.ReviewState{Repetitions: 3, Interval: 15, EaseFactor: 2.5, Status: domain.StatusReview}

	t.Run("Easy raises ease by 0.1", func(t *testing.T) {
		state := p.Apply(start, domain.Easy, day(0))
		if math.Abs(state.EaseFactor-2.6) > 1e-9 {
			t.Errorf("Expected ease factor 2.6, got %.4f", state.EaseFactor)
		}
	})

	t.Run("Easy interval grows from the prior ease", func(t *testing.T) {
		// round(15 * 2.5) = 38, not round(15 * 2.6) = 39.
		state := p.Apply(start, domain.Easy, day(0))
		if state.Interval != 38 {
			t.Errorf("Expected interval 38, got %d", state.Interval)
		}
	})

	t.Run("Again lowers ease by 0.32", func(t *testing.T) {
		state := p.Apply(start, domain.Again, day(0))
		if math.Abs(state.EaseFactor-2.18) > 1e-9 {
			t.Errorf("Expected ease factor 2.18, got %.4f", state.EaseFactor)
		}
	})

	t.Run("ease never drops below 1.3", func(t *testing.T) {
		state := start
		for i := 0; i < 20; i++ {
			state = p.Apply(state, domain.Again, day(i))
			if state.EaseFactor < 1.3 {
				t.Fatalf("Ease factor fell below floor: %.4f", state.EaseFactor)
			}
			if state.Repetitions != 0 {
				t.Fatalf("Expected repetitions to stay 0 under Again, got %d", state.Repetitions)
			}
		}
		if math.Abs(state.EaseFactor-1.3) > 1e-9 {
			t.Errorf("Expected ease factor pinned at 1.3, got %.4f", state.EaseFactor)
		}
	})
}

func TestApplyLapse(t *testing.T) {
	p := DefaultPolicy()
	next := day(0)
	graduated := domain.ReviewState{
		Repetitions: 4,
		Interval:    30,
		EaseFactor:  2.3,
		Status:      domain.StatusReview,
		NextReview:  &next,
	}

	t.Run("Again is due the same day", func(t *testing.T) {
		state := p.Apply(graduated, domain.Again, day(3))
		if state.Repetitions != 0 {
			t.Errorf("Expected repetitions reset to 0, got %d", state.Repetitions)
		}
		if state.Interval != 0 {
			t.Errorf("Expected interval 0, got %d", state.Interval)
		}
		if state.Status != domain.StatusRelearning {
			t.Errorf("Expected status relearning, got %s", state.Status)
		}
		if !state.NextReview.Equal(day(3)) {
			t.Errorf("Expected next review on %v, got %v", day(3), state.NextReview)
		}
	})

	t.Run("Hard is due the next day", func(t *testing.T) {
		state := p.Apply(graduated, domain.Hard, day(3))
		if state.Repetitions != 0 {
			t.Errorf("Expected repetitions reset to 0, got %d", state.Repetitions)
		}
		if state.Interval != 1 {
			t.Errorf("Expected interval 1, got %d", state.Interval)
		}
	})

	t.Run("lapse before graduation goes back to learning", func(t *testing.T) {
		learning := domain.ReviewState{Repetitions: 1, Interval: 1, EaseFactor: 2.5, Status: domain.StatusLearning}
		state := p.Apply(learning, domain.Again, day(1))
		if state.Status != domain.StatusLearning {
			t.Errorf("Expected status learning, got %s", state.Status)
		}
	})
}

func TestApplyHardAsPass(t *testing.T) {
	p := Policy{HardIsLapse: false, MaxIntervalDays: 365}
	state := domain.ReviewState{Repetitions: 2, Interval: 6, EaseFactor: 2.5, Status: domain.StatusReview}

	got := p.Apply(state, domain.Hard, day(0))

	if got.Repetitions != 3 {
		t.Errorf("Expected Hard to count as a pass, got repetitions %d", got.Repetitions)
	}
	if got.Interval != 15 {
		t.Errorf("Expected interval 15, got %d", got.Interval)
	}
	if math.Abs(got.EaseFactor-2.36) > 1e-9 {
		t.Errorf("Expected ease factor 2.36, got %.4f", got.EaseFactor)
	}
}

func TestApplyMaxInterval(t *testing.T) {
	p := DefaultPolicy()
	state := domain.ReviewState{Repetitions: 10, Interval: 300, EaseFactor: 2.5, Status: domain.StatusReview}

	got := p.Apply(state, domain.Good, day(0))

	if got.Interval != p.MaxIntervalDays {
		t.Errorf("Expected interval capped at %d, got %d", p.MaxIntervalDays, got.Interval)
	}
}

func TestApplyTruncatesToDay(t *testing.T) {
	p := DefaultPolicy()
	reviewedAt := time.Date(2024, 3, 1, 15, 42, 7, 0, time.UTC)

	state := p.Apply(domain.NewReviewState(), domain.Good, reviewedAt)

	want := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	if !state.NextReview.Equal(want) {
		t.Errorf("Expected next review at %v, got %v", want, state.NextReview)
	}
}

func TestRoundTripThroughEvent(t *testing.T) {
	// Reconstructing state from the emitted event must reproduce the input
	// to the next application exactly.
	p := DefaultPolicy()
	state := p.Apply(domain.NewReviewState(), domain.Good, day(0))

	ev := domain.ReviewEvent{
		CardID:      "card-1",
		Quality:     domain.Good,
		Repetitions: state.Repetitions,
		Interval:    state.Interval,
		EaseFactor:  state.EaseFactor,
		Status:      state.Status,
		NextReview:  *state.NextReview,
		ReviewedAt:  day(0),
	}

	rebuilt := ev.State()
	fromState := p.Apply(state, domain.Good, day(1))
	fromEvent := p.Apply(rebuilt, domain.Good, day(1))

	if fromState.Repetitions != fromEvent.Repetitions ||
		fromState.Interval != fromEvent.Interval ||
		fromState.EaseFactor != fromEvent.EaseFactor ||
		fromState.Status != fromEvent.Status ||
		!fromState.NextReview.Equal(*fromEvent.NextReview) {
		t.Errorf("State diverged after event round trip: %+v vs %+v", fromState, fromEvent)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name        string
		prev        domain.Status
		lapse       bool
		repetitions int
		want        domain.Status
	}{
		{"new card first success", domain.StatusNew, false, 1, domain.StatusLearning},
		{"second success graduates", domain.StatusLearning, false, 2, domain.StatusReview},
		{"graduated card stays in review", domain.StatusReview, false, 7, domain.StatusReview},
		{"lapse from review relearns", domain.StatusReview, true, 0, domain.StatusRelearning},
		{"lapse while relearning stays relearning", domain.StatusRelearning, true, 0, domain.StatusRelearning},
		{"lapse before graduation keeps learning", domain.StatusLearning, true, 0, domain.StatusLearning},
		{"lapse on a new card starts learning", domain.StatusNew, true, 0, domain.StatusLearning},
		{"relearning card graduates again", domain.StatusRelearning, false, 2, domain.StatusReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transition(tt.prev, tt.lapse, tt.repetitions)
			if got != tt.want {
				t.Errorf("transition(%s, %v, %d) = %s, want %s", tt.prev, tt.lapse, tt.repetitions, got, tt.want)
			}
		})
	}
}
