package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDate      = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInvalidViewMode  = errors.New("invalid view mode (must be day, week, or month)")
	ErrInvalidDirection = errors.New("invalid direction (must be prev or next)")
)

// ViewMode is the calendar granularity currently displayed.
type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

func ParseViewMode(s string) (ViewMode, error) {
	m := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ViewDay, ViewWeek, ViewMonth:
		return m, nil
	}
	return "", ErrInvalidViewMode
}

// Direction moves the calendar one unit of the active view.
type Direction int

const (
	DirectionPrev Direction = -1
	DirectionNext Direction = 1
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous", "back", "-1":
		return DirectionPrev, nil
	case "next", "forward", "+1", "1":
		return DirectionNext, nil
	}
	return 0, ErrInvalidDirection
}

// HabitDayStatus is the normalized join of a habit and its entry, if any,
// for a single day.
type HabitDayStatus struct {
	HabitID   string    `json:"habit_id"`
	HabitName string    `json:"habit_name"`
	Date      time.Time `json:"date"`
	Status    Progress  `json:"status"`
	ColorHint string    `json:"color_hint"`
	Due       bool      `json:"due"`
	EntryID   string    `json:"entry_id,omitempty"`
}

// CalendarDay is one rendered cell. It is derived on every build and never
// mutated afterwards.
type CalendarDay struct {
	Date            time.Time        `json:"date"`
	InCurrentPeriod bool             `json:"in_current_period"`
	IsToday         bool             `json:"is_today"`
	IsSelected      bool             `json:"is_selected"`
	HabitsForDay    []HabitDayStatus `json:"habits_for_day"`
	CompletionRate  int              `json:"completion_rate"`
}

type NavigationState struct {
	SelectedDate      time.Time `json:"selected_date"`
	ViewMode          ViewMode  `json:"view_mode"`
	VisibleRangeStart time.Time `json:"visible_range_start"`
	VisibleRangeEnd   time.Time `json:"visible_range_end"`
}

// Contains reports whether day lies inside the visible range.
func (n NavigationState) Contains(day time.Time) bool {
	return !day.Before(n.VisibleRangeStart) && !day.After(n.VisibleRangeEnd)
}

// Session identifies who the calendar is rendered for. It is built once from
// explicit configuration or the incoming request and handed to the core.
type Session struct {
	UserID string
	Token  string
}

// Visible returns at most max of the day's habits, in their sorted order,
// and how many were left out. A max of zero or less shows everything.
func (d CalendarDay) Visible(max int) ([]HabitDayStatus, int) {
	if max <= 0 || len(d.HabitsForDay) <= max {
		return d.HabitsForDay, 0
	}
	return d.HabitsForDay[:max], len(d.HabitsForDay) - max
}
