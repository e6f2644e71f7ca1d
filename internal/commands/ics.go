package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/adapters/ics"
	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func addICS(topLevel *cobra.Command, opts *rootOptions) {
	ro := &rangeOptions{}
	var out string

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Export habit due dates as an iCalendar file.",
		Example: `
habitleague ics > march.ics
habitleague ics --start 2024-03-01 --end 2024-05-31 --out ~/habits.ics
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			session, err := env.session()
			if err != nil {
				return err
			}

			now := env.clock.Now()
			startDate, endDate, err := ro.resolve(now, currentMonth)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			source := env.sources(session)

			habits, err := source.FetchHabits(ctx, session.UserID)
			if err != nil {
				return fmt.Errorf("fetch habits: %w", err)
			}
			entries, err := source.FetchHabitEntries(ctx, domain.EntryQuery{UserID: session.UserID, StartDate: startDate, EndDate: endDate})
			if err != nil {
				return fmt.Errorf("fetch entries: %w", err)
			}

			body := ics.NewExporter(env.expander).Export(habits, entries, startDate, endDate, now)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				path, err := homedir.Expand(out)
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			_, err = io.WriteString(w, body)
			return err
		},
	}

	ro.addFlags(cmd, "first day of --end's month", "end of the current month")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")

	topLevel.AddCommand(cmd)
}
