package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/hnglance/internal/adapters/httpapi"
	"github.com/bnema/hnglance/internal/adapters/schedule"
	"github.com/bnema/hnglance/internal/application"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *app) *cobra.Command {
	var listen string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh on the configured cron schedule and optionally serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cmd.Flags().Changed("listen") {
				app.config.Listen = listen
			}

			runner, err := schedule.NewRunner(app.config.Schedule, func(ctx context.Context) error {
				_, err := app.refresh(ctx, application.RunOptions{})
				return err
			}, app.logger)
			if err != nil {
				return err
			}

			if runNow {
				// failures are logged and recorded in the runner status
				_ = runner.RunOnce(ctx)
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return runner.Run(ctx)
			})
			if app.config.Listen != "" {
				router := httpapi.NewRouter(app.service, runner, app.logger)
				g.Go(func() error {
					return httpapi.Serve(ctx, app.config.Listen, router, app.logger)
				})
			}

			app.logger.Info().Str("schedule", app.config.Schedule).Str("listen", app.config.Listen).Msg("serving")
			return g.Wait()
		},
		Annotations: map[string]string{summarizerAnnotation: "true"},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP API listen address (overrides server.listen)")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run one refresh before waiting for the schedule")

	return cmd
}
