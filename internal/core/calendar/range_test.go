package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"Success: plain date", "2024-03-15", day(2024, 3, 15)},
		{"Success: timestamp keeps its own day", "2024-03-15T23:30:00-05:00", day(2024, 3, 15)},
		{"Success: space separated", "2024-03-15 08:00:00", day(2024, 3, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Fail: garbage", func(t *testing.T) {
		_, err := ParseDateKey("15/03/2024")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)

		_, err = ParseDateKey("")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}

func TestDayAndDateKey(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2024, 3, 15, 23, 0, 0, 0, loc)

	assert.Equal(t, day(2024, 3, 15), Day(late))
	assert.Equal(t, "2024-03-15", DateKey(late))
}

func TestEngine_Range(t *testing.T) {
	sunday := NewEngine(time.Sunday)
	monday := NewEngine(time.Monday)

	tests := []struct {
		name      string
		engine    Engine
		ref       time.Time
		mode      domain.ViewMode
		wantStart time.Time
		wantEnd   time.Time
		wantDays  int
	}{
		{"Success: day", sunday, day(2024, 3, 15), domain.ViewDay, day(2024, 3, 15), day(2024, 3, 15), 1},
		{"Success: week from Sunday", sunday, day(2024, 3, 15), domain.ViewWeek, day(2024, 3, 10), day(2024, 3, 16), 7},
		{"Success: week from Monday", monday, day(2024, 3, 17), domain.ViewWeek, day(2024, 3, 11), day(2024, 3, 17), 7},
		{"Success: March 2024 grid", sunday, day(2024, 3, 15), domain.ViewMonth, day(2024, 2, 25), day(2024, 4, 6), 42},
		{"Success: February 2015 fits four weeks", sunday, day(2015, 2, 10), domain.ViewMonth, day(2015, 2, 1), day(2015, 2, 28), 28},
		{"Success: week across the year end", sunday, day(2024, 12, 31), domain.ViewWeek, day(2024, 12, 29), day(2025, 1, 4), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.engine.Range(tt.ref, tt.mode)
			assert.Equal(t, tt.wantStart, r.Start)
			assert.Equal(t, tt.wantEnd, r.End)
			assert.Equal(t, tt.wantDays, r.Days())
			assert.True(t, r.Contains(tt.ref))
		})
	}
}

func TestAddPeriod(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		mode domain.ViewMode
		dir  domain.Direction
		want time.Time
	}{
		{"Success: next day over month end", day(2024, 2, 29), domain.ViewDay, domain.DirectionNext, day(2024, 3, 1)},
		{"Success: previous week", day(2024, 3, 15), domain.ViewWeek, domain.DirectionPrev, day(2024, 3, 8)},
		{"Success: next month keeps the day", day(2024, 3, 15), domain.ViewMonth, domain.DirectionNext, day(2024, 4, 15)},
		{"Success: month end clamps", day(2024, 1, 31), domain.ViewMonth, domain.DirectionNext, day(2024, 2, 29)},
		{"Success: clamps in common years", day(2023, 3, 31), domain.ViewMonth, domain.DirectionPrev, day(2023, 2, 28)},
		{"Success: previous month across the year", day(2024, 1, 10), domain.ViewMonth, domain.DirectionPrev, day(2023, 12, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddPeriod(tt.from, tt.mode, tt.dir))
		})
	}
}

func TestDaysInRange(t *testing.T) {
	var got []string
	for d := range DaysInRange(day(2024, 2, 27), day(2024, 3, 2)) {
		got = append(got, DateKey(d))
	}
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, got)

	count := 0
	for range DaysInRange(day(2024, 3, 2), day(2024, 3, 1)) {
		count++
	}
	assert.Zero(t, count)
	assert.Zero(t, Range{Start: day(2024, 3, 2), End: day(2024, 3, 1)}.Days())
}

func TestEngine_Range_Sweep(t *testing.T) {
	from, to := day(2023, 1, 1), day(2026, 12, 31)

	for _, weekStart := range []time.Weekday{time.Sunday, time.Monday} {
		t.Run(weekStart.String(), func(t *testing.T) {
			e := NewEngine(weekStart)

			for d := range DaysInRange(from, to) {
				key := DateKey(d)

				r := e.Range(d, domain.ViewDay)
				if !assert.Equal(t, 1, r.Days(), "day view of %s", key) {
					return
				}
				assert.Equal(t, d, r.Start)

				r = e.Range(d, domain.ViewWeek)
				if !assert.Equal(t, 7, r.Days(), "week view of %s", key) {
					return
				}
				assert.Equal(t, weekStart, r.Start.Weekday(), "week view of %s", key)
				assert.True(t, r.Contains(d), "week view of %s", key)

				r = e.Range(d, domain.ViewMonth)
				n := r.Days()
				if !assert.Zero(t, n%7, "month view of %s has %d days", key, n) {
					return
				}
				assert.GreaterOrEqual(t, n, 28)
				assert.LessOrEqual(t, n, 42)
				assert.Equal(t, weekStart, r.Start.Weekday(), "month view of %s", key)
				assert.True(t, r.Contains(FirstOfMonth(d)), "month view of %s", key)
				assert.True(t, r.Contains(FirstOfMonth(d).AddDate(0, 1, -1)), "month view of %s", key)
				assert.Less(t, FirstOfMonth(d).Sub(r.Start), 7*24*time.Hour, "month view of %s", key)
			}
		})
	}
}

func TestAddPeriod_Sweep(t *testing.T) {
	for d := range DaysInRange(day(2023, 1, 1), day(2026, 12, 31)) {
		for _, mode := range []domain.ViewMode{domain.ViewDay, domain.ViewWeek} {
			there := AddPeriod(d, mode, domain.DirectionNext)
			if !assert.Equal(t, d, AddPeriod(there, mode, domain.DirectionPrev), "%s %s", mode, DateKey(d)) {
				return
			}
		}

		next := AddPeriod(d, domain.ViewMonth, domain.DirectionNext)
		want := FirstOfMonth(d).AddDate(0, 1, 0)
		if !assert.Equal(t, want, FirstOfMonth(next), "month after %s", DateKey(d)) {
			return
		}
		assert.LessOrEqual(t, next.Day(), d.Day())
	}
}
