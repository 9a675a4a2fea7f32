package client

import (
	"context"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
)

// Client is the contract of the remote persistence API.
type Client interface {
	CreateTask(ctx context.Context, t *models.Task) (*SaveResult, error)
	UpdateTask(ctx context.Context, id string, t *models.Task) (*SaveResult, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ChangeSubTaskStatus(ctx context.Context, taskID, subTaskID string, status bool) (string, error)
	PostActivity(ctx context.Context, taskID string, typ models.ActivityType, body string) (*ActivityResult, error)
	Ping(ctx context.Context) error

	// CheckToken fails with common.ErrTokenExpired when the configured
	// access token is known to be expired.
	CheckToken() error
}

// SaveResult is the reply to a create or update call.
type SaveResult struct {
	Message string       `json:"message"`
	Task    *models.Task `json:"task,omitempty"`
}

// ActivityResult is the reply to an activity append. Activity is nil when
// the server does not echo the stored entry.
type ActivityResult struct {
	Message  string           `json:"message"`
	Activity *models.Activity `json:"activity,omitempty"`
}
