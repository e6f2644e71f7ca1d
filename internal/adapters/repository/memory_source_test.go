package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewInMemorySource()
	src.AddHabit(&domain.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: domain.FrequencyDaily})
	src.AddHabit(&domain.Habit{ID: "h2", UserID: "u2", Name: "Run", Frequency: domain.FrequencyDaily})

	t.Run("Success: habits are scoped to the user", func(t *testing.T) {
		habits, err := src.FetchHabits(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, habits, 1)
		assert.Equal(t, "h1", habits[0].ID)
	})

	t.Run("Success: create, update and delete an entry", func(t *testing.T) {
		created, err := src.CreateHabitEntry(ctx, domain.NewHabitEntry("h1", "u1", day(2024, 3, 5), domain.ProgressCompleted))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.UpdatedAt.IsZero())

		entries, err := src.FetchHabitEntries(ctx, domain.EntryQuery{UserID: "u1", StartDate: day(2024, 3, 1), EndDate: day(2024, 3, 31)})
		require.NoError(t, err)
		require.Equal(t, 1, entries.Len())
		assert.Equal(t, "2024-03-05", entries.Items[0].Date)

		next := domain.ProgressSkipped
		updated, err := src.UpdateHabitEntry(ctx, created.ID, domain.EntryPatch{Progress: &next})
		require.NoError(t, err)
		assert.Equal(t, domain.ProgressSkipped, updated.Progress)

		require.NoError(t, src.DeleteHabitEntry(ctx, created.ID))
		assert.ErrorIs(t, src.DeleteHabitEntry(ctx, created.ID), domain.ErrEntryNotFound)
	})

	t.Run("Fail: entries outside the range are not returned", func(t *testing.T) {
		_, err := src.CreateHabitEntry(ctx, domain.NewHabitEntry("h1", "u1", day(2024, 4, 2), domain.ProgressPartial))
		require.NoError(t, err)

		entries, err := src.FetchHabitEntries(ctx, domain.EntryQuery{UserID: "u1", StartDate: day(2024, 3, 1), EndDate: day(2024, 3, 31)})
		require.NoError(t, err)
		assert.Equal(t, 0, entries.Len())
	})

	t.Run("Fail: duplicate habit-day conflicts", func(t *testing.T) {
		_, err := src.CreateHabitEntry(ctx, domain.NewHabitEntry("h1", "u1", day(2024, 4, 2), domain.ProgressCompleted))
		assert.ErrorIs(t, err, domain.ErrEntryConflict)
	})

	t.Run("Fail: unknown habit", func(t *testing.T) {
		_, err := src.CreateHabitEntry(ctx, domain.NewHabitEntry("nope", "u1", day(2024, 4, 2), domain.ProgressCompleted))
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Fail: invalid progress patch", func(t *testing.T) {
		bad := domain.Progress("done")
		_, err := src.UpdateHabitEntry(ctx, "whatever", domain.EntryPatch{Progress: &bad})
		assert.ErrorIs(t, err, domain.ErrInvalidEntry)
	})
}
