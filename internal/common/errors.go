// Package common defines shared constants and sentinel errors used across
// client layers of taskdesk. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Workflow failure categories surfaced to the presentation layer.
	ErrUploadFailed         = errors.New("upload failed")
	ErrPersistFailed        = errors.New("task persist failed")
	ErrToggleFailed         = errors.New("sub-task status change failed")
	ErrActivityAppendFailed = errors.New("activity append failed")
	ErrFetchFailed          = errors.New("task fetch failed")

	// Input validation errors, raised before any network call.
	ErrInvalidForm     = errors.New("invalid task form")
	ErrInvalidActivity = errors.New("invalid activity")

	// Busy flags.
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrToggleInProgress = errors.New("status change already in progress")

	// Transport level errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("server unavailable")
	ErrTokenExpired = errors.New("token expired")
	ErrNotFound     = errors.New("not found")
)
