package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func keys(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, DateKey(d))
	}
	return out
}

func TestExpander_DueDates(t *testing.T) {
	x := NewExpander()
	marchStart, marchEnd := day(2024, 3, 1), day(2024, 3, 31)

	t.Run("Success: daily covers every day", func(t *testing.T) {
		h := &domain.Habit{ID: "h1", Frequency: domain.FrequencyDaily}
		assert.Len(t, x.DueDates(h, marchStart, marchEnd), 31)
	})

	t.Run("Success: weekly defaults to Mondays", func(t *testing.T) {
		h := &domain.Habit{ID: "h2", Frequency: domain.FrequencyWeekly}
		assert.Equal(t, []string{"2024-03-04", "2024-03-11", "2024-03-18", "2024-03-25"}, keys(x.DueDates(h, marchStart, marchEnd)))
	})

	t.Run("Success: weekly follows the habit's weekdays", func(t *testing.T) {
		h := &domain.Habit{ID: "h2", Frequency: domain.FrequencyWeekly, Weekdays: []int{0, 3}}
		assert.Equal(t, []string{"2024-03-03", "2024-03-06", "2024-03-10"}, keys(x.DueDates(h, marchStart, day(2024, 3, 10))))
	})

	t.Run("Success: monthly is due on the 1st", func(t *testing.T) {
		h := &domain.Habit{ID: "h3", Frequency: domain.FrequencyMonthly}
		assert.Equal(t, []string{"2024-03-01", "2024-04-01", "2024-05-01"}, keys(x.DueDates(h, marchStart, day(2024, 5, 20))))
	})

	t.Run("Success: monthly range starting mid-month yields its start", func(t *testing.T) {
		h := &domain.Habit{ID: "h3", Frequency: domain.FrequencyMonthly}
		assert.Equal(t, []string{"2024-03-11", "2024-04-01"}, keys(x.DueDates(h, day(2024, 3, 11), day(2024, 4, 5))))
	})

	t.Run("Success: unknown frequency counts as daily", func(t *testing.T) {
		h := &domain.Habit{ID: "h4", Frequency: "fortnightly"}
		assert.Len(t, x.DueDates(h, marchStart, day(2024, 3, 7)), 7)
	})

	t.Run("Fail: inverted range is empty", func(t *testing.T) {
		h := &domain.Habit{ID: "h1", Frequency: domain.FrequencyDaily}
		assert.Empty(t, x.DueDates(h, marchEnd, marchStart))
	})
}

func TestExpander_DueSet(t *testing.T) {
	x := NewExpander()
	h := &domain.Habit{ID: "h2", Frequency: domain.FrequencyWeekly}

	set := x.DueSet(h, day(2024, 3, 10), day(2024, 3, 16))
	assert.Equal(t, map[string]bool{"2024-03-11": true}, set)
}

func monthsTouched(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
}

func TestExpander_DueDates_MonthlySweep(t *testing.T) {
	x := NewExpander()
	h := &domain.Habit{ID: "h3", Frequency: domain.FrequencyMonthly}
	spans := []int{0, 1, 6, 27, 28, 29, 30, 31, 45, 59, 61, 90, 183, 365, 366, 400}

	for start := range DaysInRange(day(2023, 1, 1), day(2025, 12, 31)) {
		for _, span := range spans {
			end := start.AddDate(0, 0, span)
			got := x.DueDates(h, start, end)

			label := DateKey(start) + ".." + DateKey(end)
			if !assert.Len(t, got, monthsTouched(start, end), label) {
				return
			}

			for i, d := range got {
				assert.False(t, d.Before(start) || d.After(end), "%s yields %s", label, DateKey(d))

				want := FirstOfMonth(start).AddDate(0, i, 0)
				if i == 0 {
					want = start
				}
				assert.Equal(t, DateKey(want), DateKey(d), label)
			}
		}
	}
}
