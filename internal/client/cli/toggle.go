package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/common"
)

func newToggleCommand() *cobra.Command {
	var current bool

	cmd := &cobra.Command{
		Use:   "toggle <task-id> <sub-task-id>",
		Short: "Flip the completion state of a sub-task",
		Long: `Flip the completion state of a sub-task. The current state is read from
the task unless --current is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			taskID, subID := args[0], args[1]

			cur := current
			if !cmd.Flags().Changed("current") {
				t, err := app.tasks.GetTask(ctx, taskID)
				if err != nil {
					return app.fail(ctx, "fetch task", err)
				}
				st, ok := t.SubTask(subID)
				if !ok {
					return app.fail(ctx, "toggle", fmt.Errorf("sub-task %s: %w", subID, common.ErrNotFound))
				}
				cur = st.IsCompleted
			}

			msg, err := app.tasks.ToggleSubTask(ctx, taskID, subID, cur)
			if err != nil {
				return app.fail(ctx, "toggle", err)
			}
			if msg == "" {
				msg = "Sub-task updated."
			}
			app.printf("%s\n", msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&current, "current", false, "current completion state of the sub-task")
	return cmd
}
