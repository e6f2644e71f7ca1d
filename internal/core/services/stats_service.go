package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/comitanigiacomo/habit-league/internal/core/aggregate"
	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/platform/clock"
)

type StatsService struct {
	source   domain.HabitSource
	expander calendar.Expander
	clock    clock.Clock
}

func NewStatsService(source domain.HabitSource, expander calendar.Expander, clk clock.Clock) *StatsService {
	return &StatsService{
		source:   source,
		expander: expander,
		clock:    clk,
	}
}

// GetRangeStats summarizes every habit of the session's user over the
// inclusive day range.
func (s *StatsService) GetRangeStats(ctx context.Context, input domain.StatsInput) (*domain.RangeStats, error) {
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, domain.ErrInvalidDate
	}
	startDate := calendar.Day(input.StartDate)
	endDate := calendar.Day(input.EndDate)
	if startDate.After(endDate) {
		return nil, errors.New("start_date must not be after end_date")
	}

	habits, err := s.source.FetchHabits(ctx, input.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch habits: %w", err)
	}

	entries, err := s.source.FetchHabitEntries(ctx, domain.EntryQuery{
		UserID:    input.Session.UserID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	stats := &domain.RangeStats{
		StartDate:   calendar.DateKey(startDate),
		EndDate:     calendar.DateKey(endDate),
		TotalHabits: len(habits),
		HabitStats:  make([]domain.HabitStat, 0, len(habits)),
	}

	today := calendar.Day(s.clock.Now())
	totalTracked := 0
	totalCompleted := 0

	for _, h := range habits {
		if h == nil {
			continue
		}
		statuses := aggregate.Normalize(h, h.Entries, entries)

		hStat := domain.HabitStat{
			HabitID:     h.ID,
			HabitName:   h.Name,
			Color:       h.ColorHint(),
			Frequency:   h.Frequency,
			DueDays:     len(s.expander.DueDates(h, startDate, endDate)),
			DailyStatus: make([]string, 0),
		}

		var completedDates []time.Time
		for day := range calendar.DaysInRange(startDate, endDate) {
			status := domain.ProgressNotStarted
			if st, ok := statuses[calendar.DateKey(day)]; ok {
				status = st.Status
			}
			hStat.DailyStatus = append(hStat.DailyStatus, string(status))

			if status.Tracked() {
				hStat.DaysTracked++
			}
			if status == domain.ProgressCompleted {
				hStat.DaysCompleted++
			}
		}

		for _, st := range statuses {
			if st.Status == domain.ProgressCompleted {
				completedDates = append(completedDates, st.Date)
			}
		}

		total, completed := aggregate.RangeCounts(h, statuses, startDate, endDate)
		hStat.CompletionRate = aggregate.RangeCompletionRate(h, statuses, startDate, endDate)
		hStat.CurrentStreak, hStat.LongestStreak = calculateStreaks(completedDates, today)

		totalTracked += total
		totalCompleted += completed

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalTracked > 0 {
		stats.OverallRate = int(float64(totalCompleted)/float64(totalTracked)*100 + 0.5)
	}

	return stats, nil
}

// calculateStreaks returns the run of consecutive completed days ending today
// or yesterday, and the longest run anywhere in dates.
func calculateStreaks(dates []time.Time, today time.Time) (int, int) {
	if len(dates) == 0 {
		return 0, 0
	}

	uniqueDays := make(map[string]bool)
	var sortedDates []time.Time

	for _, d := range dates {
		day := calendar.Day(d)
		key := calendar.DateKey(day)
		if !uniqueDays[key] {
			uniqueDays[key] = true
			sortedDates = append(sortedDates, day)
		}
	}

	sort.Slice(sortedDates, func(i, j int) bool {
		return sortedDates[i].After(sortedDates[j])
	})

	consecutive := func(later, earlier time.Time) bool {
		return earlier.AddDate(0, 0, 1).Equal(later)
	}

	currentStreak := 0
	today = calendar.Day(today)
	latest := sortedDates[0]

	if latest.Equal(today) || consecutive(today, latest) {
		currentStreak = 1
		for i := 0; i < len(sortedDates)-1; i++ {
			if !consecutive(sortedDates[i], sortedDates[i+1]) {
				break
			}
			currentStreak++
		}
	}

	longestStreak := 0
	tempStreak := 1

	for i := 0; i < len(sortedDates)-1; i++ {
		if consecutive(sortedDates[i], sortedDates[i+1]) {
			tempStreak++
			continue
		}
		if tempStreak > longestStreak {
			longestStreak = tempStreak
		}
		tempStreak = 1
	}
	if tempStreak > longestStreak {
		longestStreak = tempStreak
	}

	return currentStreak, longestStreak
}
