package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/habit-league/internal/core/aggregate"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

type LoadState string

const (
	StateIdle    LoadState = "idle"
	StateLoading LoadState = "loading"
	StateReady   LoadState = "ready"
	StateError   LoadState = "error"
)

// CalendarView is what the presentation layer renders.
type CalendarView struct {
	Navigation domain.NavigationState `json:"navigation"`
	State      LoadState              `json:"state"`
	Error      string                 `json:"error,omitempty"`
	Days       []domain.CalendarDay   `json:"days"`
}

// CalendarController owns one user's calendar: navigation state plus the
// last snapshot of habits and entries fetched for the visible range.
//
// Only the result of the most recent fetch is ever applied. Each refresh
// cancels the one before it and tags itself with a generation; a result
// that comes back under an older generation is thrown away.
type CalendarController struct {
	session  domain.Session
	source   domain.HabitSource
	calendar *CalendarService
	clock    clock.Clock

	mu             sync.Mutex
	nav            *Navigator
	habits         []*domain.Habit
	entries        domain.RawEntries
	state          LoadState
	lastErr        error
	generation     uint64
	cancelInFlight context.CancelFunc
	lastUsed       time.Time
}

func NewCalendarController(session domain.Session, source domain.HabitSource, cal *CalendarService, clk clock.Clock) *CalendarController {
	return &CalendarController{
		session:  session,
		source:   source,
		calendar: cal,
		clock:    clk,
		nav:      NewNavigator(cal.Engine(), clk),
		state:    StateIdle,
		lastUsed: clk.Now(),
	}
}

func (c *CalendarController) Session() domain.Session {
	return c.session
}

// Refresh fetches habits and entries for the visible range concurrently and
// applies them together. On failure the previous snapshot stays in place
// and the controller reports the error state.
func (c *CalendarController) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	if c.cancelInFlight != nil {
		c.cancelInFlight()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancelInFlight = cancel
	nav := c.nav.State()
	c.state = StateLoading
	c.lastUsed = c.clock.Now()
	c.mu.Unlock()

	defer cancel()

	habits, entries, err := c.fetch(fetchCtx, nav)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return domain.ErrStaleFetch
	}
	c.cancelInFlight = nil

	if err != nil {
		log.Printf("[CONTROLLER] Fetch failed for user %s (%s..%s): %v",
			c.session.UserID, calendar.DateKey(nav.VisibleRangeStart), calendar.DateKey(nav.VisibleRangeEnd), err)
		c.state = StateError
		c.lastErr = err
		return err
	}

	c.habits = habits
	c.entries = entries
	c.state = StateReady
	c.lastErr = nil
	return nil
}

func (c *CalendarController) fetch(ctx context.Context, nav domain.NavigationState) ([]*domain.Habit, domain.RawEntries, error) {
	var (
		habits  []*domain.Habit
		entries domain.RawEntries
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h, err := c.source.FetchHabits(gctx, c.session.UserID)
		if err != nil {
			return fmt.Errorf("fetch habits: %w", err)
		}
		habits = h
		return nil
	})

	g.Go(func() error {
		e, err := c.source.FetchHabitEntries(gctx, domain.EntryQuery{
			UserID:    c.session.UserID,
			StartDate: nav.VisibleRangeStart,
			EndDate:   nav.VisibleRangeEnd,
		})
		if err != nil {
			return fmt.Errorf("fetch entries: %w", err)
		}
		entries = e
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, domain.RawEntries{}, err
	}
	return habits, entries, nil
}

// View rebuilds the calendar days from the current snapshot.
func (c *CalendarController) View() CalendarView {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastUsed = c.clock.Now()
	nav := c.nav.State()

	view := CalendarView{
		Navigation: nav,
		State:      c.state,
		Days:       c.calendar.Build(c.habits, c.entries, nav, c.nav.Today()),
	}
	if c.lastErr != nil {
		view.Error = c.lastErr.Error()
	}
	return view
}

func (c *CalendarController) Days() []domain.CalendarDay {
	return c.View().Days
}

func (c *CalendarController) Navigation() domain.NavigationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav.State()
}

func (c *CalendarController) SelectDate(ctx context.Context, date time.Time) error {
	return c.navigate(ctx, func(n *Navigator) error { return n.SelectDate(date) })
}

func (c *CalendarController) ChangeViewMode(ctx context.Context, mode domain.ViewMode) error {
	return c.navigate(ctx, func(n *Navigator) error { return n.ChangeViewMode(mode) })
}

func (c *CalendarController) GoToToday(ctx context.Context) error {
	return c.navigate(ctx, func(n *Navigator) error {
		n.GoToToday()
		return nil
	})
}

func (c *CalendarController) Navigate(ctx context.Context, dir domain.Direction) error {
	return c.navigate(ctx, func(n *Navigator) error { return n.Navigate(dir) })
}

// navigate applies a transition and refetches when the visible range moved
// or nothing usable has been loaded yet.
func (c *CalendarController) navigate(ctx context.Context, transition func(n *Navigator) error) error {
	c.mu.Lock()
	before := c.nav.State()
	if err := transition(c.nav); err != nil {
		c.mu.Unlock()
		return err
	}
	after := c.nav.State()
	needsFetch := c.state != StateReady ||
		!before.VisibleRangeStart.Equal(after.VisibleRangeStart) ||
		!before.VisibleRangeEnd.Equal(after.VisibleRangeEnd)
	c.mu.Unlock()

	if !needsFetch {
		return nil
	}
	return c.Refresh(ctx)
}

// AdvanceHabitStatus moves the habit's status on date one step along the
// rotation and writes it through the source: a new entry when there is none,
// an update otherwise, and a delete when the rotation returns to not
// started. A date outside the visible range is selected first so its entries
// are loaded. The snapshot is only replaced by a full refetch after the write
// succeeded; a failed write leaves it untouched and returns ErrWriteFailed.
//
// A tracked day whose entry carries no id (a legacy embedded map) is
// refetched once; if the id is still unknown nothing is written and
// ErrEntryWithoutID is returned, since a create would duplicate the entry.
func (c *CalendarController) AdvanceHabitStatus(ctx context.Context, habitID string, date time.Time) (domain.Progress, error) {
	if date.IsZero() {
		return "", domain.ErrInvalidDate
	}
	day := calendar.Day(date)
	key := calendar.DateKey(day)

	c.mu.Lock()
	loaded := c.habits != nil
	visible := c.nav.State().Contains(day)
	c.mu.Unlock()

	switch {
	case !visible:
		if err := c.SelectDate(ctx, day); err != nil && !errors.Is(err, domain.ErrStaleFetch) {
			return domain.ProgressNotStarted, err
		}
	case !loaded:
		if err := c.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrStaleFetch) {
			return domain.ProgressNotStarted, err
		}
	}

	current, entryID, err := c.statusOn(habitID, key)
	if err != nil {
		return "", err
	}

	if entryID == "" && current.Tracked() {
		if err := c.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrStaleFetch) {
			return current, err
		}
		if current, entryID, err = c.statusOn(habitID, key); err != nil {
			return "", err
		}
		if entryID == "" && current.Tracked() {
			log.Printf("[CONTROLLER] Entry for habit %s on %s has no id, not writing", habitID, key)
			return current, fmt.Errorf("habit %s on %s: %w", habitID, key, domain.ErrEntryWithoutID)
		}
	}

	next := current.Advance()

	switch {
	case entryID == "":
		_, err = c.source.CreateHabitEntry(ctx, domain.NewHabitEntry(habitID, c.session.UserID, day, next))
	case next == domain.ProgressNotStarted:
		err = c.source.DeleteHabitEntry(ctx, entryID)
	default:
		_, err = c.source.UpdateHabitEntry(ctx, entryID, domain.EntryPatch{Progress: &next})
	}
	if err != nil {
		log.Printf("[CONTROLLER] Status write failed for habit %s on %s: %v", habitID, key, err)
		return current, fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
	}

	if err := c.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrStaleFetch) {
		log.Printf("[CONTROLLER] Status saved for habit %s on %s but refresh failed: %v", habitID, key, err)
	}

	return next, nil
}

// statusOn reads the habit's status and entry id for the day from the
// current snapshot.
func (c *CalendarController) statusOn(habitID, key string) (domain.Progress, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	habit := findHabit(c.habits, habitID)
	if habit == nil {
		return "", "", domain.ErrHabitNotFound
	}
	c.lastUsed = c.clock.Now()

	if st, ok := aggregate.Normalize(habit, habit.Entries, c.entries)[key]; ok {
		return st.Status, st.EntryID, nil
	}
	return domain.ProgressNotStarted, "", nil
}

// State reports the load state without building the grid.
func (c *CalendarController) State() LoadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IdleSince reports when the calendar was last used.
func (c *CalendarController) IdleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Close cancels any fetch still in flight.
func (c *CalendarController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelInFlight != nil {
		c.cancelInFlight()
		c.cancelInFlight = nil
	}
}

func findHabit(habits []*domain.Habit, id string) *domain.Habit {
	for _, h := range habits {
		if h != nil && h.ID == id {
			return h
		}
	}
	return nil
}
