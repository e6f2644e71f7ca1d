package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
)

const maxRangeDays = 366

var errRangeTooLarge = errors.New("date range too large, max 1 year allowed")

type rangeOptions struct {
	Start string
	End   string
}

func (ro *rangeOptions) addFlags(cmd *cobra.Command, startDefault, endDefault string) {
	cmd.Flags().StringVar(&ro.Start, "start", "", "first day (YYYY-MM-DD, default "+startDefault+")")
	cmd.Flags().StringVar(&ro.End, "end", "", "last day (YYYY-MM-DD, default "+endDefault+")")
}

// rangeDefaults picks the range used when neither flag is set, and the
// start used when only --end is.
type rangeDefaults func(today time.Time) (end time.Time, startFor func(end time.Time) time.Time)

func lastWeek(today time.Time) (time.Time, func(time.Time) time.Time) {
	return today, func(end time.Time) time.Time { return end.AddDate(0, 0, -6) }
}

func currentMonth(today time.Time) (time.Time, func(time.Time) time.Time) {
	return calendar.FirstOfMonth(today).AddDate(0, 1, -1), calendar.FirstOfMonth
}

func (ro *rangeOptions) resolve(now time.Time, defaults rangeDefaults) (time.Time, time.Time, error) {
	end, startFor := defaults(calendar.Day(now))

	var err error
	if ro.End != "" {
		if end, err = calendar.ParseDateKey(ro.End); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	start := startFor(end)
	if ro.Start != "" {
		if start, err = calendar.ParseDateKey(ro.Start); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("--start cannot be after --end")
	}
	if (calendar.Range{Start: start, End: end}).Days() > maxRangeDays {
		return time.Time{}, time.Time{}, errRangeTooLarge
	}
	return start, end, nil
}
