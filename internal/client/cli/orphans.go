package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/view"
)

func newOrphansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List uploaded files whose task was never saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			recs, err := app.status.Orphans(cmd.Context())
			if err != nil {
				return app.fail(cmd.Context(), "list orphans", err)
			}
			return view.NewRenderer(app.out).Orphans(recs)
		},
	}
}
