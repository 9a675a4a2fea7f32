package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the task API and the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			app.printf("API:     %s\n", app.config.API.BaseURL)

			pingErr := app.status.Ping(ctx)
			if pingErr != nil {
				app.printf("Server:  %s\n", app.fail(ctx, "ping", pingErr))
			} else {
				app.printf("Server:  reachable\n")
			}

			sessErr := app.status.CheckSession()
			switch {
			case sessErr != nil:
				app.printf("Session: %s\n", app.fail(ctx, "check session", sessErr))
			case app.config.API.Token == "":
				app.printf("Session: no token configured\n")
			default:
				app.printf("Session: valid\n")
			}

			if err := errors.Join(pingErr, sessErr); err != nil {
				return app.fail(ctx, "status", err)
			}
			return nil
		},
	}
}
