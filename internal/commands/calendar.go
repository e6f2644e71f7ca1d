package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

type calendarOptions struct {
	Date      string
	View      string
	Direction string
	MaxPerDay int
}

func addCalendar(topLevel *cobra.Command, opts *rootOptions) {
	co := &calendarOptions{MaxPerDay: -1}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show the habit calendar.",
		Example: `
habitleague calendar
habitleague calendar --view week --date 2024-03-15
habitleague cal --view month --move next --max-per-day 2
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			maxPerDay := co.MaxPerDay
			if maxPerDay < 0 {
				maxPerDay = env.cfg.MaxPerDay
			}
			p := opts.printer(cmd, maxPerDay)

			ctrl, err := env.controller()
			if err != nil {
				return p.HandleError(err)
			}
			defer ctrl.Close()

			fetchErr := co.apply(cmd.Context(), ctrl)
			if fetchErr != nil && !isFetchError(fetchErr) {
				return p.HandleError(fetchErr)
			}

			if err := p.Calendar(ctrl.View()); err != nil {
				return err
			}
			return fetchErr
		},
	}

	cmd.Flags().StringVar(&co.Date, "date", "", "date to select (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&co.View, "view", "", "view mode: day, week or month (default month)")
	cmd.Flags().StringVar(&co.Direction, "move", "", "move one period from the selected date: prev or next")
	cmd.Flags().IntVar(&co.MaxPerDay, "max-per-day", -1, "habits listed per day before +N more (default from config, 0 shows all)")

	topLevel.AddCommand(cmd)
}

// apply drives the controller the way a user would: pick the view, then the
// date, then step. Input errors stop it; failed fetches are collected and
// the remaining steps still run, since navigation does not depend on data.
// Each step loads data itself while nothing is loaded, so only a run with no
// steps refreshes explicitly.
func (co *calendarOptions) apply(ctx context.Context, ctrl *services.CalendarController) error {
	var steps []func() error

	if co.View != "" {
		mode, err := domain.ParseViewMode(co.View)
		if err != nil {
			return err
		}
		steps = append(steps, func() error { return ctrl.ChangeViewMode(ctx, mode) })
	}
	if co.Date != "" {
		date, err := calendar.ParseDateKey(co.Date)
		if err != nil {
			return err
		}
		steps = append(steps, func() error { return ctrl.SelectDate(ctx, date) })
	}
	if co.Direction != "" {
		dir, err := domain.ParseDirection(co.Direction)
		if err != nil {
			return err
		}
		steps = append(steps, func() error { return ctrl.Navigate(ctx, dir) })
	}

	if len(steps) == 0 {
		return ctrl.Refresh(ctx)
	}

	var fetchErr error
	for _, step := range steps {
		if err := step(); err != nil {
			if !isFetchError(err) {
				return err
			}
			fetchErr = errors.Join(fetchErr, err)
		}
	}
	return fetchErr
}

// isFetchError reports whether err came from the backend rather than from
// the user's input. Those still leave a view worth printing.
func isFetchError(err error) bool {
	return !errors.Is(err, domain.ErrInvalidDate) &&
		!errors.Is(err, domain.ErrInvalidViewMode) &&
		!errors.Is(err, domain.ErrInvalidDirection)
}
