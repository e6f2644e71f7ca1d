package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidWeekdays    = errors.New("invalid weekdays (must be 0-6)")
	ErrInvalidFrequency   = errors.New("invalid frequency (must be daily, weekly, or monthly)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"

	DefaultColorHint = "#9CA3AF"
	MaxNameLen       = 100
	MaxDescLen       = 500
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Habit is the backend's habit definition. Entries carries whatever the
// backend embedded in the habit payload, in whichever shape it sent it.
type Habit struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Frequency   Frequency  `json:"frequency"`
	Color       string     `json:"color,omitempty"`
	Category    string     `json:"category,omitempty"`
	Weekdays    []int      `json:"weekdays,omitempty"`
	Entries     RawEntries `json:"entries,omitempty"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.UserID) == "" {
		return ErrHabitInvalidUserID
	}

	name := strings.TrimSpace(h.Name)
	if name == "" {
		return ErrHabitNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if len(strings.TrimSpace(h.Description)) > MaxDescLen {
		return ErrHabitDescTooLong
	}

	if !h.Frequency.Valid() {
		return ErrInvalidFrequency
	}

	for _, day := range h.Weekdays {
		if day < 0 || day > 6 {
			return ErrInvalidWeekdays
		}
	}

	if h.Color != "" && !colorRegex.MatchString(h.Color) {
		return ErrInvalidColor
	}

	return nil
}

// ColorHint is the color the presentation layer should use for this habit.
func (h *Habit) ColorHint() string {
	if h.Color == "" || !colorRegex.MatchString(h.Color) {
		return DefaultColorHint
	}
	return h.Color
}

// NormalizedWeekdays returns the distinct valid weekdays, sorted.
func (h *Habit) NormalizedWeekdays() []int {
	if len(h.Weekdays) == 0 {
		return nil
	}

	uniqueMap := make(map[int]bool)
	var uniqueDays []int
	for _, d := range h.Weekdays {
		if d < 0 || d > 6 {
			continue
		}
		if !uniqueMap[d] {
			uniqueMap[d] = true
			uniqueDays = append(uniqueDays, d)
		}
	}

	sort.Ints(uniqueDays)
	return uniqueDays
}
