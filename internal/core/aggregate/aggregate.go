// Package aggregate normalizes habit entries from every payload shape the
// backend produces into one status per habit and day, and derives the
// completion rates shown on the calendar.
package aggregate

import (
	"log"
	"math"
	"strconv"
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

type candidate struct {
	raw  domain.RawEntry
	date time.Time
}

// Normalize folds the habit's raw entries into one status per day, keyed by
// yyyy-MM-dd. embedded is what the backend nested inside the habit, so its
// untagged entries belong to h. fetched are user-wide entry lists: only
// entries tagged with h's id count there, and untagged ones are dropped.
// Sources are read in order, embedded first, so a source fetched later wins
// over an earlier one when nothing else orders two entries for the same day.
// Entries whose date cannot be parsed are dropped.
func Normalize(h *domain.Habit, embedded domain.RawEntries, fetched ...domain.RawEntries) map[string]domain.HabitDayStatus {
	n := normalizer{habit: h, winners: make(map[string]candidate)}

	n.fold(embedded, true)
	for _, src := range fetched {
		n.fold(src, false)
	}

	if n.dropped > 0 {
		log.Printf("[AGGREGATOR] Dropped %d malformed entries for habit %s", n.dropped, h.ID)
	}
	if n.untagged > 0 {
		log.Printf("[AGGREGATOR] Ignored %d fetched entries without habit_id for habit %s", n.untagged, h.ID)
	}

	out := make(map[string]domain.HabitDayStatus, len(n.winners))
	for key, c := range n.winners {
		out[key] = domain.HabitDayStatus{
			HabitID:   h.ID,
			HabitName: h.Name,
			Date:      c.date,
			Status:    StatusOf(c.raw),
			ColorHint: h.ColorHint(),
			EntryID:   c.raw.ID.String(),
		}
	}

	return out
}

type normalizer struct {
	habit    *domain.Habit
	winners  map[string]candidate
	dropped  int
	untagged int
}

// fold merges one source into the winners. owned marks a source whose
// untagged entries are taken to be the habit's own.
func (n *normalizer) fold(src domain.RawEntries, owned bool) {
	n.dropped += src.Skipped

	for _, raw := range src.Items {
		switch {
		case raw.HabitID == "" && !owned:
			n.untagged++
			continue
		case raw.HabitID != "" && raw.HabitID.String() != n.habit.ID:
			continue
		}

		day, err := calendar.ParseDateKey(raw.Date)
		if err != nil {
			n.dropped++
			continue
		}

		key := calendar.DateKey(day)
		if current, ok := n.winners[key]; ok && !supersedes(raw, current.raw) {
			continue
		}
		n.winners[key] = candidate{raw: raw, date: day}
	}
}

// StatusOf derives the progress of a raw entry. A recognised progress string
// is authoritative; otherwise the legacy completed flag decides, and an entry
// carrying neither counts as not started.
func StatusOf(raw domain.RawEntry) domain.Progress {
	if p, ok := domain.ParseProgress(raw.Progress); ok {
		return p
	}

	if raw.Completed != nil {
		if *raw.Completed {
			return domain.ProgressCompleted
		}
		return domain.ProgressPartial
	}

	return domain.ProgressNotStarted
}

// supersedes reports whether next replaces current for the same habit-day.
// A later updated_at wins, then a larger numeric id; with neither signal the
// entry seen last wins.
func supersedes(next, current domain.RawEntry) bool {
	if next.UpdatedAt != nil && current.UpdatedAt != nil && !next.UpdatedAt.Equal(*current.UpdatedAt) {
		return next.UpdatedAt.After(*current.UpdatedAt)
	}

	nextID, okNext := numericID(next.ID)
	currentID, okCurrent := numericID(current.ID)
	if okNext && okCurrent && nextID != currentID {
		return nextID > currentID
	}

	return true
}

func numericID(id domain.FlexID) (int64, bool) {
	if id == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(id.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DayCompletionRate is the share of tracked habits completed on dateKey, as
// an integer percentage. Only habits with a status other than not_started
// count towards the denominator; with none tracked the rate is 0. Statuses
// for other days are ignored, and an empty dateKey counts every status.
func DayCompletionRate(dateKey string, habitsForDay []domain.HabitDayStatus) int {
	tracked, completed := 0, 0

	for _, s := range habitsForDay {
		if dateKey != "" && calendar.DateKey(s.Date) != dateKey {
			continue
		}
		if !s.Status.Tracked() {
			continue
		}
		tracked++
		if s.Status == domain.ProgressCompleted {
			completed++
		}
	}

	return percent(completed, tracked)
}

// RangeCompletionRate is the share of the habit's entries in [start, end]
// that are completed. statuses is the output of Normalize for h.
func RangeCompletionRate(h *domain.Habit, statuses map[string]domain.HabitDayStatus, start, end time.Time) int {
	total, completed := RangeCounts(h, statuses, start, end)
	return percent(completed, total)
}

// RangeCounts returns how many entries the habit has in the range and how
// many of them are completed.
func RangeCounts(h *domain.Habit, statuses map[string]domain.HabitDayStatus, start, end time.Time) (total, completed int) {
	r := calendar.Range{Start: calendar.Day(start), End: calendar.Day(end)}

	for _, s := range statuses {
		if s.HabitID != h.ID || !r.Contains(s.Date) {
			continue
		}
		total++
		if s.Status == domain.ProgressCompleted {
			completed++
		}
	}

	return total, completed
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
