package recommend

import (
	"math"
	"slices"
	"time"
)

// normalizeDate strips the time-of-day so dates compare as calendar days.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SessionBest is the best set of one training day.
type SessionBest struct {
	Date     time.Time
	Estimate float64
	Entry    WorkoutEntry
	// Sets counts the active entries logged that day.
	Sets int
}

// Snapshot is the active part of an exercise history seen from a fixed day.
type Snapshot struct {
	entries  []WorkoutEntry
	today    time.Time
	modifier float64
}

// NewSnapshot keeps the active entries of history in chronological order. Entries logged on
// the same day keep their input order.
func NewSnapshot(history []WorkoutEntry, now time.Time, modifier float64) Snapshot {
	entries := make([]WorkoutEntry, 0, len(history))
	for _, e := range history {
		if !e.IsActive() {
			continue
		}
		e.Date = normalizeDate(e.Date)
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b WorkoutEntry) int {
		return a.Date.Compare(b.Date)
	})
	if modifier <= 0 {
		modifier = 1
	}
	return Snapshot{entries: entries, today: normalizeDate(now), modifier: modifier}
}

// Entries returns the active entries, oldest first.
func (s Snapshot) Entries() []WorkoutEntry {
	return s.entries
}

// Len is the number of active entries.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Estimate is the modifier-adjusted one-rep max estimate of e.
func (s Snapshot) Estimate(e WorkoutEntry) float64 {
	return estimateWithModifier(e.WeightKg, e.Reps, e.RepsInReserve, s.modifier)
}

func (s Snapshot) daysAgo(date time.Time) int {
	return int(math.Round(s.today.Sub(normalizeDate(date)).Hours() / 24)) //nolint:mnd // hours per day
}

// InRange returns the entries dated between start and end days ago, both inclusive.
func (s Snapshot) InRange(start, end int) []WorkoutEntry {
	var matched []WorkoutEntry
	for _, e := range s.entries {
		if d := s.daysAgo(e.Date); d >= start && d <= end {
			matched = append(matched, e)
		}
	}
	return matched
}

// HighestEstimateInRange is the best estimate dated between start and end days ago, or 0.
func (s Snapshot) HighestEstimateInRange(start, end int) float64 {
	var best float64
	for _, e := range s.InRange(start, end) {
		best = max(best, s.Estimate(e))
	}
	return best
}

// MostRecentEntry returns the entry with the latest date. Several entries on that date are
// decided by highest estimate, then heavier weight, then the later input position.
func (s Snapshot) MostRecentEntry() (WorkoutEntry, bool) {
	if len(s.entries) == 0 {
		return WorkoutEntry{}, false
	}
	latest := s.entries[len(s.entries)-1].Date
	var (
		best      WorkoutEntry
		bestScore float64
		found     bool
	)
	for _, e := range s.entries {
		if !e.Date.Equal(latest) {
			continue
		}
		score := s.Estimate(e)
		if !found || score > bestScore || (score == bestScore && e.WeightKg >= best.WeightKg) {
			best, bestScore, found = e, score, true
		}
	}
	return best, found
}

// SessionCount is the number of distinct training days.
func (s Snapshot) SessionCount() int {
	return len(s.SessionBests())
}

// DaysSinceLastSession is the number of days since the latest active entry. It reports false
// for an empty history.
func (s Snapshot) DaysSinceLastSession() (int, bool) {
	if len(s.entries) == 0 {
		return 0, false
	}
	return max(s.daysAgo(s.entries[len(s.entries)-1].Date), 0), true
}

// SessionBests returns the best set of every training day, oldest first.
func (s Snapshot) SessionBests() []SessionBest {
	return s.sessionBests(s.entries)
}

func (s Snapshot) sessionBests(entries []WorkoutEntry) []SessionBest {
	var sessions []SessionBest
	for _, e := range entries {
		estimate := s.Estimate(e)
		if n := len(sessions); n > 0 && sessions[n-1].Date.Equal(e.Date) {
			last := &sessions[n-1]
			last.Sets++
			if estimate > last.Estimate {
				last.Estimate = estimate
				last.Entry = e
			}
			continue
		}
		sessions = append(sessions, SessionBest{Date: e.Date, Estimate: estimate, Entry: e, Sets: 1})
	}
	return sessions
}
