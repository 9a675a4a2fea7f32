// Package services contains the application services of the taskdesk client.
// This file implements the task submission workflow: upload new attachments,
// merge their URLs after the prior ones and persist the task in one call.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/taskdesk/internal/client/asset"
	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/cryptox"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// TaskService defines the task operations offered to the presentation layer.
//
// Contract:
//   - Submit: upload files, compose the asset list and create or update the task.
//   - ToggleSubTask: send the negation of the sub-task's current completion flag.
//   - AppendActivity: add an entry to the task's timeline.
//   - GetTask: read a task for display.
//
// Submitting and Toggling report whether the matching operation is running.
// A second Submit (or ToggleSubTask) on the same service while one is running
// fails immediately with common.ErrSubmitInProgress (ErrToggleInProgress).
type TaskService interface {
	Submit(ctx context.Context, form models.TaskForm, files []models.PendingFile, existing *models.ExistingTask) (string, error)
	Submitting() bool
	ToggleSubTask(ctx context.Context, taskID, subTaskID string, current bool) (string, error)
	Toggling() bool
	AppendActivity(ctx context.Context, taskID string, typ models.ActivityType, body string) (*models.Activity, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
}

// UploadError reports the first file of an attempt that failed to upload.
// It matches common.ErrUploadFailed.
type UploadError struct {
	Index int
	Name  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s (file %d): %v", common.ErrUploadFailed, e.Name, e.Index+1, e.Err)
}

func (e *UploadError) Unwrap() []error {
	return []error{common.ErrUploadFailed, e.Err}
}

const defaultSavedMessage = "Task saved successfully."

type taskService struct {
	api         client.Client
	uploader    asset.Uploader
	journal     uploads.Repository
	log         logging.Logger
	concurrency int
	now         func() time.Time
	newID       func() string

	submitting atomic.Bool
	toggling   atomic.Bool
}

type Option func(*taskService)

func WithLogger(l logging.Logger) Option {
	return func(s *taskService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithJournal records every upload in r. Journal failures are logged and
// never fail an operation.
func WithJournal(r uploads.Repository) Option {
	return func(s *taskService) { s.journal = r }
}

// WithConcurrency uploads up to n files at once; n <= 1 uploads sequentially.
func WithConcurrency(n int) Option {
	return func(s *taskService) { s.concurrency = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *taskService) { s.now = now }
}

func NewTaskService(api client.Client, uploader asset.Uploader, opts ...Option) TaskService {
	s := &taskService{
		api:         api,
		uploader:    uploader,
		log:         logging.Nop(),
		concurrency: 1,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *taskService) Submitting() bool { return s.submitting.Load() }
func (s *taskService) Toggling() bool   { return s.toggling.Load() }

func (s *taskService) Submit(ctx context.Context, form models.TaskForm, files []models.PendingFile, existing *models.ExistingTask) (string, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return "", common.ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	if err := form.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidForm, err)
	}

	// An expired session would leave every upload below orphaned.
	if err := s.api.CheckToken(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrPersistFailed, err)
	}

	var (
		taskID string
		prior  []string
	)
	if existing != nil {
		taskID = existing.ID
		prior = existing.Assets
	}

	attemptID := s.newID()
	log := s.log.With("attempt_id", attemptID)
	log.Info(ctx, "submitting task", "task_id", taskID, "files", len(files), "prior_assets", len(prior))

	uploaded, err := s.uploadAll(ctx, log, attemptID, files)
	if err != nil {
		s.orphan(ctx, log, attemptID)
		return "", err
	}

	assets := make([]string, 0, len(prior)+len(uploaded))
	assets = append(assets, prior...)
	assets = append(assets, uploaded...)

	task, err := form.Compose(taskID, assets)
	if err != nil {
		s.orphan(ctx, log, attemptID)
		return "", fmt.Errorf("%w: %w", common.ErrInvalidForm, err)
	}

	var res *client.SaveResult
	if taskID != "" {
		log.Info(ctx, "updating task", "task_id", taskID, "assets", len(assets))
		res, err = s.api.UpdateTask(ctx, taskID, task)
	} else {
		log.Info(ctx, "creating task", "assets", len(assets))
		res, err = s.api.CreateTask(ctx, task)
	}
	if err != nil {
		log.Error(ctx, "persist failed", "error", err)
		s.orphan(ctx, log, attemptID)
		return "", fmt.Errorf("%w: %w", common.ErrPersistFailed, err)
	}

	if res.Task != nil && res.Task.ID != "" {
		taskID = res.Task.ID
	}
	s.commit(ctx, log, attemptID, taskID)

	if res.Message == "" {
		return defaultSavedMessage, nil
	}
	return res.Message, nil
}

// uploadAll uploads files and returns their URLs in selection order. The
// first failure aborts the phase; URLs of files uploaded before it are still
// journaled so they can be found as orphans.
func (s *taskService) uploadAll(ctx context.Context, log logging.Logger, attemptID string, files []models.PendingFile) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	upload := func(ctx context.Context, i int) error {
		f := files[i]
		// Nothing new starts once the attempt has failed or was cancelled.
		if err := ctx.Err(); err != nil {
			return &UploadError{Index: i, Name: f.Name, Err: err}
		}
		url, err := s.uploader.Upload(ctx, f)
		if err != nil {
			log.Error(ctx, "upload failed", "file", f.Name, "index", i, "error", err)
			return &UploadError{Index: i, Name: f.Name, Err: err}
		}
		log.Debug(ctx, "file uploaded", "file", f.Name, "url", url)
		urls[i] = url
		return nil
	}

	var err error
	if s.concurrency <= 1 || len(files) == 1 {
		for i := range files {
			if err = upload(ctx, i); err != nil {
				break
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for i := range files {
			g.Go(func() error { return upload(gctx, i) })
		}
		err = g.Wait()
	}

	s.record(ctx, log, attemptID, files, urls)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, "files uploaded", "count", len(urls))
	return urls, nil
}

func (s *taskService) record(ctx context.Context, log logging.Logger, attemptID string, files []models.PendingFile, urls []string) {
	if s.journal == nil {
		return
	}

	var recs []*uploads.Record
	for i, url := range urls {
		if url == "" {
			continue
		}
		f := files[i]
		recs = append(recs, &uploads.Record{
			ID:        s.newID(),
			AttemptID: attemptID,
			FileName:  f.Name,
			Size:      f.Size,
			Digest:    digest(f),
			URL:       url,
			CreatedAt: s.now(),
		})
	}
	if len(recs) == 0 {
		return
	}
	if err := s.journal.AddAll(ctx, recs); err != nil {
		log.Warn(ctx, "journal add failed", "files", len(recs), "error", err)
	}
}

func digest(f models.PendingFile) string {
	r, err := f.Open()
	if err != nil {
		return ""
	}
	defer r.Close()

	d, err := cryptox.DigestReader(r)
	if err != nil {
		return ""
	}
	return d
}

func (s *taskService) orphan(ctx context.Context, log logging.Logger, attemptID string) {
	if s.journal == nil {
		return
	}
	n, err := s.journal.MarkOrphaned(ctx, attemptID)
	if err != nil {
		log.Warn(ctx, "journal update failed", "error", err)
		return
	}
	if n > 0 {
		log.Warn(ctx, "uploads left orphaned", "count", n)
	}
}

func (s *taskService) commit(ctx context.Context, log logging.Logger, attemptID, taskID string) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Commit(ctx, attemptID, taskID); err != nil {
		log.Warn(ctx, "journal update failed", "error", err)
	}
}

func (s *taskService) ToggleSubTask(ctx context.Context, taskID, subTaskID string, current bool) (string, error) {
	if !s.toggling.CompareAndSwap(false, true) {
		return "", common.ErrToggleInProgress
	}
	defer s.toggling.Store(false)

	msg, err := s.api.ChangeSubTaskStatus(ctx, taskID, subTaskID, !current)
	if err != nil {
		s.log.Error(ctx, "sub-task status change failed", "task_id", taskID, "sub_task_id", subTaskID, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrToggleFailed, err)
	}
	return msg, nil
}

func (s *taskService) AppendActivity(ctx context.Context, taskID string, typ models.ActivityType, body string) (*models.Activity, error) {
	typ, err := models.ParseActivityType(string(typ))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidActivity, err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: activity text is required", common.ErrInvalidActivity)
	}

	res, err := s.api.PostActivity(ctx, taskID, typ, body)
	if err != nil {
		s.log.Error(ctx, "activity append failed", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrActivityAppendFailed, err)
	}

	if res.Activity != nil {
		return res.Activity, nil
	}
	return &models.Activity{Type: typ, Body: body, Date: s.now()}, nil
}

func (s *taskService) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.api.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrFetchFailed, err)
	}
	return t, nil
}
