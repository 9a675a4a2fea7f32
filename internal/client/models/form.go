package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the layout of the form's date field.
const DateLayout = "2006-01-02"

// TaskForm carries the task form fields as entered by the user. Stage and
// Priority are already resolved to their enumerated values.
type TaskForm struct {
	Title       string    `validate:"required"`
	Date        string    `validate:"required,datetime=2006-01-02"`
	Description string    `validate:"omitempty"`
	Links       string    `validate:"omitempty"`
	Team        []UserRef `validate:"omitempty,dive"`
	Stage       Stage     `validate:"required,oneof=todo 'in progress' completed"`
	Priority    Priority  `validate:"required,oneof=high medium normal low"`
}

// ExistingTask is the context of a task being updated.
type ExistingTask struct {
	ID     string
	Assets []string
}

// NewTaskForm returns a form with the defaults of the create dialog.
func NewTaskForm(now time.Time) TaskForm {
	return TaskForm{
		Date:     now.Format(DateLayout),
		Stage:    StageTodo,
		Priority: PriorityNormal,
	}
}

// FormFromTask pre-fills a form from a persisted task.
func FormFromTask(t *Task) TaskForm {
	return TaskForm{
		Title:       t.Title,
		Date:        t.Date.Format(DateLayout),
		Description: t.Description,
		Links:       strings.Join(t.Links, ", "),
		Team:        t.Team,
		Stage:       t.Stage,
		Priority:    t.Priority,
	}
}

var validate = validator.New()

// Validate checks required fields and enumerations. A title of only
// whitespace counts as missing.
func (f TaskForm) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(e.Field())))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be YYYY-MM-DD", strings.ToLower(e.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s has invalid value %q", strings.ToLower(e.Field()), e.Value()))
		}
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Compose builds the task payload from the form and the final asset list.
// The form must be valid.
func (f TaskForm) Compose(id string, assets []string) (*Task, error) {
	date, err := time.Parse(DateLayout, f.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}

	return &Task{
		ID:          id,
		Title:       strings.TrimSpace(f.Title),
		Date:        date,
		Team:        UniqueTeam(f.Team),
		Stage:       f.Stage,
		Priority:    f.Priority,
		Description: f.Description,
		Links:       SplitLinks(f.Links),
		Assets:      assets,
	}, nil
}
