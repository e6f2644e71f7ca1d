// Package calendar holds the calendar arithmetic of the habit calendar: view
// ranges, navigation steps, day iteration and recurrence expansion.
//
// Every date handled here is a civil date: midnight UTC carrying the year,
// month and day of the calendar day it stands for. Dates cross the backend
// boundary as yyyy-MM-dd with no zone, so instants never enter the core.
package calendar

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

const DateLayout = "2006-01-02"

// Day normalizes t to the civil date of its own wall clock.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateKey(t time.Time) string {
	return Day(t).Format(DateLayout)
}

// ParseDateKey accepts yyyy-MM-dd as well as full timestamps, keeping the
// calendar day the timestamp was written in.
func ParseDateKey(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.ErrInvalidDate
	}

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
}

// Range is an inclusive span of civil dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days in the range, 0 if it is inverted.
func (r Range) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start)).Hours()/24) + 1
}

func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Engine computes view ranges. WeekStart is the first column of week and
// month grids.
type Engine struct {
	WeekStart time.Weekday
}

func NewEngine(weekStart time.Weekday) Engine {
	return Engine{WeekStart: weekStart}
}

func (e Engine) StartOfWeek(t time.Time) time.Time {
	d := Day(t)
	offset := (int(d.Weekday()) - int(e.WeekStart) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

func (e Engine) EndOfWeek(t time.Time) time.Time {
	return e.StartOfWeek(t).AddDate(0, 0, 6)
}

// Range returns the days a view of the given mode shows around ref. Month
// grids always cover whole weeks, so they include leading and trailing days
// of the neighbouring months. Unknown modes render as a month.
func (e Engine) Range(ref time.Time, mode domain.ViewMode) Range {
	d := Day(ref)

	switch mode {
	case domain.ViewDay:
		return Range{Start: d, End: d}
	case domain.ViewWeek:
		return Range{Start: e.StartOfWeek(d), End: e.EndOfWeek(d)}
	default:
		first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return Range{Start: e.StartOfWeek(first), End: e.EndOfWeek(last)}
	}
}

// AddPeriod shifts date by one unit of the view. Month steps keep the day of
// month when possible and clamp to the last day otherwise, so 31 January
// moves to the end of February rather than into March.
func AddPeriod(date time.Time, mode domain.ViewMode, dir domain.Direction) time.Time {
	d := Day(date)
	n := int(dir)

	switch mode {
	case domain.ViewDay:
		return d.AddDate(0, 0, n)
	case domain.ViewWeek:
		return d.AddDate(0, 0, 7*n)
	default:
		first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
		lastDay := first.AddDate(0, 1, -1).Day()
		day := d.Day()
		if day > lastDay {
			day = lastDay
		}
		return first.AddDate(0, 0, day-1)
	}
}

// DaysInRange yields every day from start to end inclusive. The sequence is
// lazy and can be ranged over any number of times.
func DaysInRange(start, end time.Time) iter.Seq[time.Time] {
	from, to := Day(start), Day(end)
	return func(yield func(time.Time) bool) {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

func FirstOfMonth(t time.Time) time.Time {
	d := Day(t)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
