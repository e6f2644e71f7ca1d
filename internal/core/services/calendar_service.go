package services

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/aggregate"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

// CalendarService builds the calendar view model from a snapshot of habits
// and entries. It holds no state between builds.
type CalendarService struct {
	engine   calendar.Engine
	expander calendar.Expander
}

func NewCalendarService(engine calendar.Engine, expander calendar.Expander) *CalendarService {
	return &CalendarService{
		engine:   engine,
		expander: expander,
	}
}

func (s *CalendarService) Engine() calendar.Engine {
	return s.engine
}

func (s *CalendarService) Expander() calendar.Expander {
	return s.expander
}

type habitView struct {
	habit    *domain.Habit
	statuses map[string]domain.HabitDayStatus
	due      map[string]bool
}

// Build returns one CalendarDay per day of the active view. Every habit
// appears on every day; days without an entry show the habit as not started.
// entries is the separately fetched entry list and takes precedence over the
// entries embedded in each habit.
func (s *CalendarService) Build(habits []*domain.Habit, entries domain.RawEntries, nav domain.NavigationState, today time.Time) []domain.CalendarDay {
	r := s.engine.Range(nav.SelectedDate, nav.ViewMode)

	views := make([]habitView, 0, len(habits))
	for _, h := range habits {
		if h == nil {
			continue
		}
		views = append(views, habitView{
			habit:    h,
			statuses: aggregate.Normalize(h, h.Entries, entries),
			due:      s.expander.DueSet(h, r.Start, r.End),
		})
	}

	todayKey := calendar.DateKey(today)
	selectedKey := calendar.DateKey(nav.SelectedDate)
	selected := calendar.Day(nav.SelectedDate)

	days := make([]domain.CalendarDay, 0, r.Days())
	for d := range calendar.DaysInRange(r.Start, r.End) {
		key := calendar.DateKey(d)

		statuses := make([]domain.HabitDayStatus, 0, len(views))
		for _, v := range views {
			st, ok := v.statuses[key]
			if !ok {
				st = domain.HabitDayStatus{
					HabitID:   v.habit.ID,
					HabitName: v.habit.Name,
					Date:      d,
					Status:    domain.ProgressNotStarted,
					ColorHint: v.habit.ColorHint(),
				}
			}
			st.Due = v.due[key]
			statuses = append(statuses, st)
		}
		SortDayStatuses(statuses)

		days = append(days, domain.CalendarDay{
			Date:            d,
			InCurrentPeriod: inCurrentPeriod(d, selected, nav.ViewMode),
			IsToday:         key == todayKey,
			IsSelected:      key == selectedKey,
			HabitsForDay:    statuses,
			CompletionRate:  aggregate.DayCompletionRate(key, statuses),
		})
	}

	return days
}

func inCurrentPeriod(day, selected time.Time, mode domain.ViewMode) bool {
	if mode == domain.ViewDay || mode == domain.ViewWeek {
		return true
	}
	return day.Year() == selected.Year() && day.Month() == selected.Month()
}

var statusRank = map[domain.Progress]int{
	domain.ProgressCompleted:  0,
	domain.ProgressPartial:    1,
	domain.ProgressSkipped:    2,
	domain.ProgressNotStarted: 3,
}

func rank(p domain.Progress) int {
	if r, ok := statusRank[p]; ok {
		return r
	}
	return len(statusRank)
}

// SortDayStatuses orders a day's habits completed, partial, skipped, then
// not started, breaking ties by habit name and then id. Display truncation
// relies on this order.
func SortDayStatuses(statuses []domain.HabitDayStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		ri, rj := rank(statuses[i].Status), rank(statuses[j].Status)
		if ri != rj {
			return ri < rj
		}
		if statuses[i].HabitName != statuses[j].HabitName {
			return statuses[i].HabitName < statuses[j].HabitName
		}
		return statuses[i].HabitID < statuses[j].HabitID
	})
}
