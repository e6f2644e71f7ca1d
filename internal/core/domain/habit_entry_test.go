package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Advance(t *testing.T) {
	t.Run("Success: full rotation", func(t *testing.T) {
		p := ProgressNotStarted
		var seen []Progress
		for range 4 {
			p = p.Advance()
			seen = append(seen, p)
		}
		assert.Equal(t, []Progress{ProgressCompleted, ProgressSkipped, ProgressPartial, ProgressNotStarted}, seen)
	})

	t.Run("Success: four steps return to the start from any status", func(t *testing.T) {
		for _, start := range []Progress{ProgressNotStarted, ProgressCompleted, ProgressSkipped, ProgressPartial} {
			assert.Equal(t, start, start.Advance().Advance().Advance().Advance(), start)
		}
	})

	t.Run("Success: unknown values advance like not_started", func(t *testing.T) {
		assert.Equal(t, ProgressCompleted, Progress("done").Advance())
		assert.Equal(t, ProgressCompleted, Progress("").Advance())
	})
}

func TestParseProgress(t *testing.T) {
	p, ok := ParseProgress(" Completed ")
	assert.True(t, ok)
	assert.Equal(t, ProgressCompleted, p)

	_, ok = ParseProgress("done")
	assert.False(t, ok)

	assert.False(t, ProgressNotStarted.Tracked())
	assert.True(t, ProgressSkipped.Tracked())
	assert.False(t, Progress("bogus").Tracked())
}

func TestNewHabitEntry(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Rome")
	if loc == nil {
		loc = time.UTC
	}

	// 00:30 in Rome is still the previous day in UTC.
	inputDate := time.Date(2026, 1, 28, 0, 30, 0, 0, loc)
	entry := NewHabitEntry("habit-123", "user-456", inputDate, ProgressPartial)

	t.Run("Should set core identity fields correctly", func(t *testing.T) {
		assert.Equal(t, "habit-123", entry.HabitID)
		assert.Equal(t, "user-456", entry.UserID)
		assert.Equal(t, ProgressPartial, entry.Progress)
		assert.Empty(t, entry.ID)
	})

	t.Run("Should keep the calendar day the date was written in", func(t *testing.T) {
		assert.Equal(t, time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC), entry.Date)
	})

	t.Run("Should validate", func(t *testing.T) {
		assert.NoError(t, entry.Validate())

		bad := *entry
		bad.Progress = "done"
		assert.Equal(t, ErrInvalidEntry, bad.Validate())

		bad = *entry
		bad.Date = time.Time{}
		assert.Error(t, bad.Validate())
	})
}
