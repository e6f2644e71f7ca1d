package services

import (
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

// Navigator is the navigation state machine of one calendar. The visible
// range is always derived from the selected date and view mode, never the
// other way round. A Navigator is not safe for concurrent use.
type Navigator struct {
	engine calendar.Engine
	clock  clock.Clock
	state  domain.NavigationState
}

// NewNavigator starts on today in month view.
func NewNavigator(engine calendar.Engine, clk clock.Clock) *Navigator {
	n := &Navigator{engine: engine, clock: clk}
	n.set(n.Today(), domain.ViewMonth)
	return n
}

func (n *Navigator) State() domain.NavigationState {
	return n.state
}

func (n *Navigator) Today() time.Time {
	return calendar.Day(n.clock.Now())
}

func (n *Navigator) SelectDate(date time.Time) error {
	if date.IsZero() {
		return domain.ErrInvalidDate
	}
	n.set(date, n.state.ViewMode)
	return nil
}

// ChangeViewMode switches granularity and moves the selection back to today.
// Selecting the mode that is already active changes nothing.
func (n *Navigator) ChangeViewMode(mode domain.ViewMode) error {
	if _, err := domain.ParseViewMode(string(mode)); err != nil {
		return err
	}
	if mode == n.state.ViewMode {
		return nil
	}
	n.set(n.Today(), mode)
	return nil
}

func (n *Navigator) GoToToday() {
	n.set(n.Today(), n.state.ViewMode)
}

func (n *Navigator) Navigate(dir domain.Direction) error {
	if dir != domain.DirectionPrev && dir != domain.DirectionNext {
		return domain.ErrInvalidDirection
	}
	n.set(calendar.AddPeriod(n.state.SelectedDate, n.state.ViewMode, dir), n.state.ViewMode)
	return nil
}

func (n *Navigator) set(selected time.Time, mode domain.ViewMode) {
	selected = calendar.Day(selected)
	r := n.engine.Range(selected, mode)

	n.state = domain.NavigationState{
		SelectedDate:      selected,
		ViewMode:          mode,
		VisibleRangeStart: r.Start,
		VisibleRangeEnd:   r.End,
	}
}
