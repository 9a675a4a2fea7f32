package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/config"
)

var errNoApp = errors.New("command is not initialized")

type appKey struct{}

// appFrom returns the App that the root command stored in ctx.
func appFrom(cmd *cobra.Command) (*App, error) {
	app, ok := cmd.Context().Value(appKey{}).(*App)
	if !ok || app == nil {
		return nil, errNoApp
	}
	return app, nil
}

// NewRootCommand builds the taskdesk command tree. build wires the services
// once configuration is loaded; s are the streams every command uses.
func NewRootCommand(build Builder, s Streams) *cobra.Command {
	var (
		opts     config.Options
		askToken bool
		app      *App
	)

	root := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Create and track tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Flags holds the inherited persistent flags once parsed.
			flags := cmd.Flags()
			if askToken {
				tok, err := GetSecret("API token", s.Err)
				if err != nil {
					return err
				}
				if err := flags.Set("token", tok); err != nil {
					return err
				}
			}

			opts.Flags = flags
			cfg, err := config.LoadConfig(opts)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			app, err = build(ctx, cfg, s)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
	}

	root.SetIn(s.In)
	root.SetOut(s.Out)
	root.SetErr(s.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigFile, "config", "", "configuration file (JSON or YAML)")
	pf.StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file")
	pf.BoolVar(&askToken, "ask-token", false, "prompt for the API token")
	pf.String("api-url", "", "base URL of the task API")
	pf.String("token", "", "bearer token for the task API")
	pf.Duration("timeout", 0, "request timeout for the task API")
	pf.String("provider", "", "asset provider: cloudinary or s3")
	pf.Int("concurrency", 0, "number of files uploaded at once")
	pf.String("journal", "", "upload journal DSN")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-format", "", "log format: text, json or console")

	root.AddCommand(
		newSubmitCommand(),
		newShowCommand(),
		newToggleCommand(),
		newActivityCommand(),
		newOrphansCommand(),
		newStatusCommand(),
		newServeCommand(),
	)
	return root
}

// DefaultStreams are the process standard streams.
func DefaultStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}
