package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnema/hnglance/internal/adapters/httpapi"
	"github.com/bnema/hnglance/internal/adapters/render/digest"
	"github.com/spf13/cobra"
)

func newListCmd(app *app) *cobra.Command {
	var asJSON bool
	var brief bool
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the cached stories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := app.service.Records(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				items := make([]httpapi.ItemView, 0, len(records))
				for _, record := range records {
					items = append(items, httpapi.NewItemView(record))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			rendered, err := app.digestRenderer(records, digest.RenderOptions{
				Now:        app.now(),
				StaleAfter: staleAfter,
				Brief:      brief,
			})
			if err != nil {
				return fmt.Errorf("render stories: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&brief, "brief", false, "Omit summaries")
	cmd.Flags().DurationVar(&staleAfter, "stale-after", 6*time.Hour, "Mark stories not updated within this window as stale (0 disables)")

	return cmd
}
