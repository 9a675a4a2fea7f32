package common

import "errors"

// ServerMessager is implemented by errors that carry a human-readable message
// supplied by a remote server.
type ServerMessager interface {
	ServerMessage() string
}

var genericMessages = []struct {
	target error
	msg    string
}{
	{ErrSubmitInProgress, "A submission is already running."},
	{ErrToggleInProgress, "A status change is already running."},
	{ErrInvalidForm, "Please fill in the required fields."},
	{ErrInvalidActivity, "Activity type and text are required."},
	{ErrTokenExpired, "Your session has expired. Please sign in again."},
	{ErrUploadFailed, "Failed to upload file(s)."},
	{ErrPersistFailed, "Failed to save the task."},
	{ErrToggleFailed, "Failed to update the sub-task."},
	{ErrActivityAppendFailed, "Failed to post the activity."},
	{ErrFetchFailed, "Failed to load the task."},
	{ErrUnauthorized, "You are not allowed to do that."},
	{ErrUnavailable, "The server is unavailable. Try again later."},
}

// Message returns the text a presentation layer should display for err.
//
// A server-supplied message wins. Otherwise the first matching failure
// category provides a generic message, and anything else falls back to
// err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}

	var sm ServerMessager
	if errors.As(err, &sm) {
		if m := sm.ServerMessage(); m != "" {
			return m
		}
	}

	for _, g := range genericMessages {
		if errors.Is(err, g.target) {
			if g.target == ErrInvalidForm {
				return err.Error()
			}
			return g.msg
		}
	}

	return err.Error()
}
