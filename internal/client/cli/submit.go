package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/common"
)

type submitFlags struct {
	id          string
	title       string
	date        string
	description string
	links       string
	team        []string
	stage       string
	priority    string
	files       []string
	assets      []string
}

func newSubmitCommand() *cobra.Command {
	var f submitFlags

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Create or update a task",
		Long: `Create a task, or update one with --id. Attached files are uploaded to the
asset store first; the task is saved only when every upload succeeded.`,
		Example: `  # Create a task with two attachments
  taskdesk submit --title "Release notes" --priority high --file notes.md --file logo.png

  # Rename an existing task, keeping its assets
  taskdesk submit --id 65f0c0ffee --title "Release notes v2"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return app.submit(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.id, "id", "", "id of the task to update")
	fl.StringVarP(&f.title, "title", "t", "", "task title")
	fl.StringVar(&f.date, "date", "", "task date (YYYY-MM-DD)")
	fl.StringVarP(&f.description, "description", "d", "", "task description")
	fl.StringVar(&f.links, "links", "", "comma-separated links")
	fl.StringSliceVar(&f.team, "team", nil, "team member ids")
	fl.StringVarP(&f.stage, "stage", "s", "", "stage: todo, in progress or completed")
	fl.StringVarP(&f.priority, "priority", "p", "", "priority: high, medium, normal or low")
	fl.StringArrayVarP(&f.files, "file", "f", nil, "file to attach; may be repeated")
	fl.StringArrayVar(&f.assets, "asset", nil, "prior asset URL; replaces the task's assets when given")
	return cmd
}

func (a *App) submit(cmd *cobra.Command, f submitFlags) error {
	ctx := cmd.Context()

	if len(f.files) > 0 {
		if err := a.config.ValidateAssets(); err != nil {
			return err
		}
	}

	form := models.NewTaskForm(time.Now())
	var existing *models.ExistingTask

	if id := strings.TrimSpace(f.id); id != "" {
		t, err := a.tasks.GetTask(ctx, id)
		if err != nil {
			return a.fail(ctx, "fetch task", err)
		}
		form = models.FormFromTask(t)
		existing = &models.ExistingTask{ID: id, Assets: t.Assets}
	}

	if cmd.Flags().Changed("asset") {
		if existing == nil {
			existing = &models.ExistingTask{}
		}
		existing.Assets = f.assets
	}

	if err := applySubmitFlags(cmd, f, &form); err != nil {
		return a.fail(ctx, "read flags", fmt.Errorf("%w: %w", common.ErrInvalidForm, err))
	}

	if err := a.promptMissing(&form); err != nil {
		return err
	}

	files := make([]models.PendingFile, 0, len(f.files))
	for _, p := range f.files {
		pf, err := models.PendingFileFromPath(p)
		if err != nil {
			return err
		}
		files = append(files, pf)
	}

	msg, err := a.tasks.Submit(ctx, form, files, existing)
	if err != nil {
		return a.fail(ctx, "submit", err)
	}
	a.printf("%s\n", msg)
	return nil
}

// applySubmitFlags overlays the flags the user set onto form.
func applySubmitFlags(cmd *cobra.Command, f submitFlags, form *models.TaskForm) error {
	fl := cmd.Flags()
	if fl.Changed("title") {
		form.Title = f.title
	}
	if fl.Changed("date") {
		form.Date = f.date
	}
	if fl.Changed("description") {
		form.Description = f.description
	}
	if fl.Changed("links") {
		form.Links = f.links
	}
	if fl.Changed("team") {
		form.Team = models.TeamFromIDs(f.team)
	}
	if fl.Changed("stage") {
		st, err := models.ParseStage(f.stage)
		if err != nil {
			return err
		}
		form.Stage = st
	}
	if fl.Changed("priority") {
		pr, err := models.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		form.Priority = pr
	}
	return nil
}

// promptMissing asks for the required text fields left empty.
func (a *App) promptMissing(form *models.TaskForm) error {
	if !a.interactive {
		return nil
	}

	if strings.TrimSpace(form.Title) == "" {
		v, err := GetSimpleText(a.reader, "Task title", a.out)
		if err != nil {
			return err
		}
		form.Title = v
	}
	if strings.TrimSpace(form.Date) == "" {
		v, err := GetSimpleText(a.reader, "Task date (YYYY-MM-DD)", a.out)
		if err != nil {
			return err
		}
		form.Date = v
	}
	return nil
}
