package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/view"
	"github.com/dmitrijs2005/taskdesk/internal/common"
)

func activityTypeNames() string {
	names := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func newActivityCommand() *cobra.Command {
	var typ, text string

	cmd := &cobra.Command{
		Use:   "activity <task-id>",
		Short: "Add an entry to a task's activity timeline",
		Example: `  taskdesk activity 65f0c0ffee --type commented --text "Waiting for review"

  # Type the text interactively
  taskdesk activity 65f0c0ffee --type bug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			at, err := models.ParseActivityType(typ)
			if err != nil {
				return app.fail(ctx, "activity", fmt.Errorf("%w: %w", common.ErrInvalidActivity, err))
			}

			if strings.TrimSpace(text) == "" && app.interactive {
				text, err = GetMultiline(app.reader, "Activity text", app.out)
				if err != nil {
					return err
				}
			}

			act, err := app.tasks.AppendActivity(ctx, args[0], at, text)
			if err != nil {
				return app.fail(ctx, "activity", err)
			}
			app.printf("Activity added.\n")
			return view.NewRenderer(app.out).Activity(*act)
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(models.ActivityCommented), "activity type: "+activityTypeNames())
	cmd.Flags().StringVar(&text, "text", "", "activity text")
	return cmd
}
