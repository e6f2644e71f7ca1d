package commands

import (
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
)

func addStats(topLevel *cobra.Command, opts *rootOptions) {
	ro := &rangeOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Per-habit completion and streaks over a range of days.",
		Example: `
habitleague stats
habitleague stats --start 2024-03-01 --end 2024-03-31
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			p := opts.printer(cmd, env.cfg.MaxPerDay)

			session, err := env.session()
			if err != nil {
				return p.HandleError(err)
			}

			startDate, endDate, err := ro.resolve(env.clock.Now(), lastWeek)
			if err != nil {
				return p.HandleError(err)
			}

			svc := services.NewStatsService(env.sources(session), env.expander, env.clock)
			stats, err := svc.GetRangeStats(cmd.Context(), domain.StatsInput{
				Session:   session,
				StartDate: startDate,
				EndDate:   endDate,
			})
			if err != nil {
				return p.HandleError(err)
			}

			return p.Stats(stats)
		},
	}

	ro.addFlags(cmd, "six days before --end", "today")
	topLevel.AddCommand(cmd)
}
