package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/bridge"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task workflows to a local front-end over HTTP",
		Long: `Serve the task workflows to a local front-end over HTTP.

All requests share one task service: while a submission is running, any other
submission is rejected with 409 Conflict, even for a different task. The same
holds for sub-task status changes.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			h := bridge.NewRouter(app.tasks, app.status, app.log)
			return bridge.Serve(cmd.Context(), app.config.Bridge.Addr, h, app.log)
		},
	}

	cmd.Flags().String("addr", "", "listen address of the bridge")
	return cmd
}
