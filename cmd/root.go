package cmd

import (
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "hnglance",
		Short:         "Hacker News digest cache: fetch, summarize and export top stories",
		Long:          "hnglance keeps an incremental cache of Hacker News stories with page and comment summaries, refreshed on demand or on a cron schedule.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.wire(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: ~/.config/hnglance/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format override (console, json)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRefreshCmd(app),
		newListCmd(app),
		newServeCmd(app),
	)

	return rootCmd
}
