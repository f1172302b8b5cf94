// Package stats derives study analytics from review event history:
// consecutive-day streaks, session and time-range rollups, user-wide
// summaries and the recent activity feed. Every function is pure over its
// inputs; empty input always yields zeroed statistics.
package stats

import (
	"sort"
	"time"
)

// Streaks holds the consecutive-day study streaks derived from review
// timestamps.
type Streaks struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// CalcStreaks buckets review timestamps into calendar dates in loc and
// computes the current and longest runs of consecutive study days. The
// current streak is live only if the last studied date is the reference
// date or the day before it; otherwise it is 0.
func CalcStreaks(times []time.Time, reference time.Time, loc *time.Location) Streaks {
	days := distinctDays(times, loc)
	if len(days) == 0 {
		return Streaks{}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	refDay := dayNumber(reference, loc)
	last := days[len(days)-1]
	if last == refDay || last == refDay-1 {
		current = 1
		for i := len(days) - 1; i > 0; i-- {
			if days[i]-days[i-1] != 1 {
				break
			}
			current++
		}
	}

	return Streaks{Current: current, Longest: longest}
}

// distinctDays collapses timestamps to a sorted set of calendar-day
// numbers in loc.
func distinctDays(times []time.Time, loc *time.Location) []int {
	seen := make(map[int]bool, len(times))
	for _, t := range times {
		seen[dayNumber(t, loc)] = true
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// dayNumber converts a timestamp to an integer day index of its calendar
// date in loc. Differencing day numbers gives whole calendar days, so
// daylight-saving shifts and times of day cannot produce off-by-one runs.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DateKey formats the calendar date of t in loc, used as the daily
// breakdown map key.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
