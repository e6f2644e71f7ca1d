package commands

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adapterHTTP "github.com/comitanigiacomo/habit-league/internal/adapters/handler/http"
	"github.com/comitanigiacomo/habit-league/internal/adapters/ics"
	"github.com/comitanigiacomo/habit-league/internal/core/services"
	"github.com/comitanigiacomo/habit-league/internal/core/workers"
)

func addServe(topLevel *cobra.Command, opts *rootOptions) {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar over HTTP for web and mobile clients.",
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now()

			env, err := opts.load()
			if err != nil {
				return err
			}
			defer env.Close()

			if listen == "" {
				listen = env.cfg.Listen
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			registry := services.NewSessionRegistry(env.sources, env.calendar, env.clock)

			worker := workers.NewRefreshWorker(registry, env.cfg.RefreshCron, env.cfg.SessionTTLDuration())
			if err := worker.Start(ctx); err != nil {
				return err
			}

			router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
				CalendarHandler: adapterHTTP.NewCalendarHandler(registry),
				StatsHandler:    adapterHTTP.NewStatsHandler(env.sources, env.expander, env.clock),
				ICSHandler:      adapterHTTP.NewICSHandler(env.sources, ics.NewExporter(env.expander), env.clock),
				Registry:        registry,
				DB:              env.db,
				Redis:           env.rdb,
				SourceKind:      env.cfg.Source,
				RateLimits:      env.rateLimits(),
				StartTime:       startTime,
			})

			srv := &http.Server{
				Addr:         listen,
				Handler:      router,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				log.Printf("Habit League calendar running on http://%s (source: %s)", listen, env.cfg.Source)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}

			log.Println("Stop signal received. Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}

			log.Println("Server stopped gracefully.")
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")

	topLevel.AddCommand(cmd)
}
