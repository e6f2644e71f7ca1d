package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func TestHabit_Validate(t *testing.T) {
	valid := func() domain.Habit {
		return domain.Habit{ID: "h1", UserID: "u1", Name: "Read", Frequency: domain.FrequencyDaily}
	}

	tests := []struct {
		name    string
		mutate  func(h *domain.Habit)
		wantErr error
	}{
		{"Success: minimal daily habit", func(h *domain.Habit) {}, nil},
		{"Success: weekly with weekdays and short color", func(h *domain.Habit) {
			h.Frequency = domain.FrequencyWeekly
			h.Weekdays = []int{0, 6}
			h.Color = "#abc"
		}, nil},
		{"Fail: missing user", func(h *domain.Habit) { h.UserID = " " }, domain.ErrHabitInvalidUserID},
		{"Fail: blank name", func(h *domain.Habit) { h.Name = "   " }, domain.ErrHabitNameEmpty},
		{"Fail: name too long", func(h *domain.Habit) { h.Name = strings.Repeat("a", domain.MaxNameLen+1) }, domain.ErrHabitNameTooLong},
		{"Fail: description too long", func(h *domain.Habit) { h.Description = strings.Repeat("a", domain.MaxDescLen+1) }, domain.ErrHabitDescTooLong},
		{"Fail: unknown frequency", func(h *domain.Habit) { h.Frequency = "hourly" }, domain.ErrInvalidFrequency},
		{"Fail: weekday out of range", func(h *domain.Habit) { h.Weekdays = []int{1, 7} }, domain.ErrInvalidWeekdays},
		{"Fail: bad color", func(h *domain.Habit) { h.Color = "red" }, domain.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid()
			tt.mutate(&h)
			assert.Equal(t, tt.wantErr, h.Validate())
		})
	}
}

func TestHabit_ColorHint(t *testing.T) {
	t.Run("Success: keeps a valid color", func(t *testing.T) {
		h := domain.Habit{Color: "#22C55E"}
		assert.Equal(t, "#22C55E", h.ColorHint())
	})

	t.Run("Success: falls back to the neutral hint", func(t *testing.T) {
		assert.Equal(t, domain.DefaultColorHint, (&domain.Habit{}).ColorHint())
		assert.Equal(t, domain.DefaultColorHint, (&domain.Habit{Color: "blue"}).ColorHint())
	})
}

func TestHabit_NormalizedWeekdays(t *testing.T) {
	h := domain.Habit{Weekdays: []int{5, 1, 5, 9, -1, 3}}
	assert.Equal(t, []int{1, 3, 5}, h.NormalizedWeekdays())
	assert.Nil(t, (&domain.Habit{}).NormalizedWeekdays())
}
