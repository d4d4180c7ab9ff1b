package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/hnglance/internal/application"
	"github.com/spf13/cobra"
)

func newRefreshCmd(app *app) *cobra.Command {
	var opts application.RunOptions
	var asJSON bool
	var progress bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and update the story cache",
		Long: "refresh collects candidate stories, refetches the ones whose upstream state changed, " +
			"summarizes new or changed content and atomically rewrites the cache.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Resummarize && opts.RewriteOnly {
				return errors.New("--resummarize and --rewrite-only are mutually exclusive")
			}

			var report application.RunReport
			run := func(ctx context.Context) error {
				var err error
				report, err = app.refresh(ctx, opts)
				return err
			}

			var err error
			if progress {
				err = runRefreshSpinner(cmd.Context(), cmd.ErrOrStderr(), refreshLabel(opts.Mode()), run)
			} else {
				err = run(cmd.Context())
			}
			if err != nil {
				return err
			}

			return writeRunReport(cmd.OutOrStdout(), report, asJSON)
		},
		Annotations: map[string]string{summarizerAnnotation: "true"},
	}

	cmd.Flags().BoolVar(&opts.Resummarize, "resummarize", false, "Re-derive summaries of cached stories without network access")
	cmd.Flags().BoolVar(&opts.RewriteOnly, "rewrite-only", false, "Rewrite the cache from the previous snapshot without fetching")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render the run report as JSON")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show a spinner while the cycle runs")

	return cmd
}

func refreshLabel(mode application.RunMode) string {
	switch mode {
	case application.RunModeResummarize:
		return "Resummarizing cached stories..."
	case application.RunModeRewrite:
		return "Rewriting cache..."
	default:
		return "Refreshing Hacker News stories..."
	}
}

func writeRunReport(w io.Writer, report application.RunReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, err := fmt.Fprintf(w,
		"%s run finished: %d candidates, %d suppressed, %d created, %d changed, %d unchanged, "+
			"%d carried forward, %d dropped, %d failed, %d pruned, %d summaries; %d stories cached\n",
		report.Mode,
		report.Candidates,
		report.Suppressed,
		report.Created,
		report.Changed,
		report.Unchanged,
		report.CarriedForward,
		report.Dropped,
		report.Failed,
		report.Pruned,
		report.Summaries,
		report.Records,
	)
	return err
}
