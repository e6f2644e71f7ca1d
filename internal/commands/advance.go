package commands

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/core/calendar"
)

func addAdvance(topLevel *cobra.Command, opts *rootOptions) {
	var date string

	cmd := &cobra.Command{
		Use:   "advance <habit-id>",
		Short: "Move a habit to its next status for a day.",
		Long: `Move a habit to its next status for a day.

The status cycles not started -> completed -> skipped -> partial -> not started.`,
		Example: `
habitleague advance 42
habitleague advance 42 --date 2024-03-14
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			p := opts.printer(cmd, env.cfg.MaxPerDay)

			day := calendar.Day(env.clock.Now())
			if date != "" {
				if day, err = calendar.ParseDateKey(date); err != nil {
					return p.HandleError(err)
				}
			}

			ctrl, err := env.controller()
			if err != nil {
				return p.HandleError(err)
			}
			defer ctrl.Close()

			if err := ctrl.SelectDate(cmd.Context(), day); err != nil {
				return p.HandleError(err)
			}

			next, err := ctrl.AdvanceHabitStatus(cmd.Context(), args[0], day)
			if err != nil {
				return p.HandleError(err)
			}

			return p.Advanced(args[0], calendar.DateKey(day), next)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to change (YYYY-MM-DD, default today)")

	topLevel.AddCommand(cmd)
}
