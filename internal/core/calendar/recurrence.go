package calendar

import (
	"log"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Expander turns a habit's frequency into the days it is due.
//
// Weekly habits without explicit weekdays recur on WeeklyDefault. The
// backend has no per-habit weekday for them, and Monday is what the web
// client has always shown.
type Expander struct {
	WeeklyDefault time.Weekday
}

func NewExpander() Expander {
	return Expander{WeeklyDefault: time.Monday}
}

// DueDates returns the ordered days in [start, end] on which the habit is due.
// Monthly habits are due on the 1st; a month whose 1st lies before start
// contributes start instead, so every month touching the range yields
// exactly one date.
func (x Expander) DueDates(h *domain.Habit, start, end time.Time) []time.Time {
	from, to := Day(start), Day(end)
	if from.After(to) {
		return []time.Time{}
	}

	opt := rrule.ROption{Dtstart: from}

	switch h.Frequency {
	case domain.FrequencyDaily:
		opt.Freq = rrule.DAILY

	case domain.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = x.weekdays(h)

	case domain.FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
		opt.Dtstart = FirstOfMonth(from)
		opt.Bymonthday = []int{1}

	default:
		log.Printf("[RECURRENCE] Unknown frequency %q for habit %s, treating as daily", h.Frequency, h.ID)
		opt.Freq = rrule.DAILY
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		log.Printf("[RECURRENCE] Failed to build rule for habit %s: %v", h.ID, err)
		return []time.Time{}
	}

	occurrences := rule.Between(opt.Dtstart, to, true)

	dates := make([]time.Time, 0, len(occurrences))
	for _, occ := range occurrences {
		d := Day(occ)
		if d.Before(from) {
			d = from
		}
		dates = append(dates, d)
	}

	return dates
}

// DueSet is DueDates keyed by date for lookups while building a grid.
func (x Expander) DueSet(h *domain.Habit, start, end time.Time) map[string]bool {
	dates := x.DueDates(h, start, end)
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[DateKey(d)] = true
	}
	return set
}

func (x Expander) weekdays(h *domain.Habit) []rrule.Weekday {
	days := h.NormalizedWeekdays()
	if len(days) == 0 {
		return []rrule.Weekday{rruleWeekdays[x.WeeklyDefault]}
	}

	out := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, rruleWeekdays[d])
	}
	return out
}
