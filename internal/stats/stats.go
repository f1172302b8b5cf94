package stats

import (
	"time"

	"github.com/deckard-app/deckard/internal/domain"
)

// DefaultSecondsPerReview is the fixed study-time estimate attributed to
// one review in daily breakdowns. No per-review latency is measured.
const DefaultSecondsPerReview = 10

// SessionStats summarizes the reviews inside one study window.
type SessionStats struct {
	TotalReviews int `json:"totalReviews"`
	// Partition by the status each card held before its review.
	NewCards      int                    `json:"newCards"`      // previously unseen
	LearningCards int                    `json:"learningCards"` // learning or relearning
	ReviewCards   int                    `json:"reviewCards"`   // previously graduated
	ByQuality     map[domain.Quality]int `json:"byQuality"`
	Correct       int                    `json:"correct"`
	AccuracyPct   float64                `json:"accuracyPct"`
	// Elapsed wall-clock time between the window bounds.
	DurationSeconds int `json:"durationSeconds"`
}

// Session aggregates the events of one study window. The window bounds
// supply the session duration; events are assumed to lie inside them.
func Session(events []domain.ReviewEvent, from, to time.Time) SessionStats {
	s := SessionStats{
		ByQuality: make(map[domain.Quality]int, 4),
	}
	if to.After(from) {
		s.DurationSeconds = int(to.Sub(from) / time.Second)
	}

	for _, ev := range events {
		s.TotalReviews++
		s.ByQuality[ev.Quality]++
		if ev.Quality.Correct() {
			s.Correct++
		}
		switch ev.PreviousStatus {
		case domain.StatusNew:
			s.NewCards++
		case domain.StatusReview:
			s.ReviewCards++
		default:
			s.LearningCards++
		}
	}

	if s.TotalReviews > 0 {
		s.AccuracyPct = float64(s.Correct) / float64(s.TotalReviews) * 100
	}
	return s
}

// DayActivity is one day's slice of a range breakdown.
type DayActivity struct {
	Reviews          int `json:"reviews"`
	EstimatedSeconds int `json:"estimatedSeconds"`
}

// RangeStats summarizes review activity over a calendar date range.
type RangeStats struct {
	TotalReviews int     `json:"totalReviews"`
	Correct      int     `json:"correct"`
	AccuracyPct  float64 `json:"accuracyPct"`
	// Daily maps calendar dates (YYYY-MM-DD in the caller's location) to
	// that day's activity. Days without reviews are absent.
	Daily map[string]DayActivity `json:"daily"`
	// ConsistencyPct is the share of days in the range with any review.
	ConsistencyPct float64 `json:"consistencyPct"`
	Streaks        Streaks `json:"streaks"`
}

// Range buckets events by calendar date in loc over [from, to] and
// derives the daily breakdown, consistency and streaks anchored at the
// range's end date. secondsPerReview is the fixed per-review time
// estimate; values below 1 fall back to the default.
func Range(events []domain.ReviewEvent, from, to time.Time, loc *time.Location, secondsPerReview int) RangeStats {
	if secondsPerReview < 1 {
		secondsPerReview = DefaultSecondsPerReview
	}

	r := RangeStats{Daily: make(map[string]DayActivity)}
	times := make([]time.Time, 0, len(events))

	for _, ev := range events {
		r.TotalReviews++
		if ev.Quality.Correct() {
			r.Correct++
		}
		key := DateKey(ev.ReviewedAt, loc)
		day := r.Daily[key]
		day.Reviews++
		day.EstimatedSeconds = day.Reviews * secondsPerReview
		r.Daily[key] = day
		times = append(times, ev.ReviewedAt)
	}

	if r.TotalReviews > 0 {
		r.AccuracyPct = float64(r.Correct) / float64(r.TotalReviews) * 100
	}
	if totalDays := dayNumber(to, loc) - dayNumber(from, loc) + 1; totalDays > 0 {
		r.ConsistencyPct = float64(len(r.Daily)) / float64(totalDays) * 100
	}
	r.Streaks = CalcStreaks(times, to, loc)
	return r
}

// UserStats aggregates review activity across all of a user's decks.
type UserStats struct {
	TotalReviews int     `json:"totalReviews"`
	Correct      int     `json:"correct"`
	AccuracyPct  float64 `json:"accuracyPct"`
	// Distinct cards touched in each trailing window.
	StudiedToday     int `json:"cardsToday"`
	StudiedThisWeek  int `json:"cardsThisWeek"`  // trailing 7 days
	StudiedThisMonth int `json:"cardsThisMonth"` // trailing 30 days
	// BestDay is the weekday with the most reviews across all history,
	// empty when there is none. Ties go to the earliest weekday starting
	// from Sunday.
	BestDay string  `json:"bestDay"`
	Streaks Streaks `json:"streaks"`
}

// User derives user-wide statistics from the full review history.
func User(events []domain.ReviewEvent, now time.Time, loc *time.Location) UserStats {
	u := UserStats{}

	today := make(map[string]bool)
	week := make(map[string]bool)
	month := make(map[string]bool)
	byWeekday := [7]int{}
	times := make([]time.Time, 0, len(events))

	nowDay := dayNumber(now, loc)
	for _, ev := range events {
		u.TotalReviews++
		if ev.Quality.Correct() {
			u.Correct++
		}
		evDay := dayNumber(ev.ReviewedAt, loc)
		switch age := nowDay - evDay; {
		case age == 0:
			today[ev.CardID] = true
			fallthrough
		case age < 7:
			week[ev.CardID] = true
			fallthrough
		case age < 30:
			month[ev.CardID] = true
		}
		byWeekday[ev.ReviewedAt.In(loc).Weekday()]++
		times = append(times, ev.ReviewedAt)
	}

	u.StudiedToday = len(today)
	u.StudiedThisWeek = len(week)
	u.StudiedThisMonth = len(month)

	if u.TotalReviews > 0 {
		u.AccuracyPct = float64(u.Correct) / float64(u.TotalReviews) * 100
		best := 0
		for wd := 1; wd < 7; wd++ {
			if byWeekday[wd] > byWeekday[best] {
				best = wd
			}
		}
		u.BestDay = time.Weekday(best).String()
	}
	u.Streaks = CalcStreaks(times, now, loc)
	return u
}
