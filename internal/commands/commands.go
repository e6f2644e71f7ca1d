// Package commands is the habitleague command line.
package commands

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/habit-league/internal/adapters/printer"
	"github.com/comitanigiacomo/habit-league/internal/config"
)

type rootOptions struct {
	ConfigPath string
	JSON       bool
	NoColor    bool
}

func New() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "habitleague",
		Short:         "Habit calendar for the Habit League backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.NoColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultPath+")")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "print JSON instead of text")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	AddCommands(cmd, opts)
	return cmd
}

func AddCommands(topLevel *cobra.Command, opts *rootOptions) {
	addServe(topLevel, opts)
	addCalendar(topLevel, opts)
	addAdvance(topLevel, opts)
	addStats(topLevel, opts)
	addICS(topLevel, opts)
}

// load reads the config and builds the environment for one command run.
func (o *rootOptions) load() (*environment, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	return newEnvironment(cfg)
}

func (o *rootOptions) printer(cmd *cobra.Command, maxPerDay int) *printer.Printer {
	out := cmd.OutOrStdout()
	if out == os.Stdout {
		out = color.Output
	}
	p := printer.New(out, maxPerDay)
	p.JSON = o.JSON
	return p
}
