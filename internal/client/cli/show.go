package cli

import (
	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/view"
)

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <task-id>",
		Aliases: []string{"get"},
		Short:   "Show a task with its sub-tasks and activities",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			t, err := app.tasks.GetTask(cmd.Context(), args[0])
			if err != nil {
				return app.fail(cmd.Context(), "fetch task", err)
			}
			return view.NewRenderer(app.out).Task(t)
		},
	}
}
