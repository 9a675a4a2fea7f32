package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskdesk/internal/client/asset"
	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/uploads"
	"github.com/dmitrijs2005/taskdesk/internal/common"
)

type fakeAPI struct {
	client.Client

	mu        sync.Mutex
	created   []*models.Task
	updated   map[string]*models.Task
	createRes *client.SaveResult
	updateRes *client.SaveResult
	saveErr   error
	tokenErr  error

	statuses  []bool
	toggleErr error

	activityRes *client.ActivityResult
	activityErr error
	posted      []models.ActivityType

	task   *models.Task
	getErr error

	// block, when set, is read before CreateTask returns
	block chan struct{}
}

func (f *fakeAPI) CheckToken() error { return f.tokenErr }

func (f *fakeAPI) CreateTask(ctx context.Context, t *models.Task) (*client.SaveResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, t)
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.createRes != nil {
		return f.createRes, nil
	}
	return &client.SaveResult{Message: "Task created successfully."}, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, t *models.Task) (*client.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = map[string]*models.Task{}
	}
	f.updated[id] = t
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if f.updateRes != nil {
		return f.updateRes, nil
	}
	return &client.SaveResult{Message: "Task updated successfully."}, nil
}

func (f *fakeAPI) ChangeSubTaskStatus(ctx context.Context, taskID, subTaskID string, status bool) (string, error) {
	if f.toggleErr != nil {
		return "", f.toggleErr
	}
	f.statuses = append(f.statuses, status)
	return "Sub-task updated", nil
}

func (f *fakeAPI) PostActivity(ctx context.Context, taskID string, typ models.ActivityType, body string) (*client.ActivityResult, error) {
	f.posted = append(f.posted, typ)
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	if f.activityRes != nil {
		return f.activityRes, nil
	}
	return &client.ActivityResult{Message: "Activity posted"}, nil
}

func (f *fakeAPI) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return f.task, f.getErr
}

func (f *fakeAPI) persistCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created) + len(f.updated)
}

// fakeUploader returns "https://cdn/<name>" unless name is listed in fail.
// delay, when set, is slept before answering for that name.
type fakeUploader struct {
	mu    sync.Mutex
	fail  map[string]error
	delay map[string]time.Duration
	calls []string
}

func (u *fakeUploader) Upload(ctx context.Context, f models.PendingFile) (string, error) {
	u.mu.Lock()
	u.calls = append(u.calls, f.Name)
	d := u.delay[f.Name]
	err := u.fail[f.Name]
	u.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "https://cdn/" + f.Name, nil
}

func (u *fakeUploader) uploaded() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.calls...)
}

var _ asset.Uploader = (*fakeUploader)(nil)

func form(title string, stage models.Stage, prio models.Priority) models.TaskForm {
	return models.TaskForm{
		Title:    title,
		Date:     "2024-06-01",
		Links:    "https://a.io, https://b.io",
		Team:     models.TeamFromIDs([]string{"u1", "u2"}),
		Stage:    stage,
		Priority: prio,
	}
}

func files(names ...string) []models.PendingFile {
	out := make([]models.PendingFile, 0, len(names))
	for _, n := range names {
		out = append(out, models.PendingFileFromBytes(n, []byte("data-"+n)))
	}
	return out
}

func TestSubmit_CreateWithTwoFiles(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}
	svc := NewTaskService(api, up)

	msg, err := svc.Submit(context.Background(), form("Fix bug", models.StageTodo, models.PriorityHigh), files("a.png", "b.png"), nil)
	require.NoError(t, err)

	assert.Equal(t, "Task created successfully.", msg)
	require.Len(t, api.created, 1)
	assert.Empty(t, api.updated)

	got := api.created[0]
	want := &models.Task{
		Title:    "Fix bug",
		Date:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Team:     []models.UserRef{{ID: "u1"}, {ID: "u2"}},
		Stage:    models.StageTodo,
		Priority: models.PriorityHigh,
		Links:    []string{"https://a.io", "https://b.io"},
		Assets:   []string{"https://cdn/a.png", "https://cdn/b.png"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("created task mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, svc.Submitting())
}

func TestSubmit_NoFilesKeepsPriorAssets(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}
	svc := NewTaskService(api, up)

	prior := []string{"https://cdn/x", "https://cdn/y"}
	_, err := svc.Submit(context.Background(), form("T", models.StageCompleted, models.PriorityLow), nil,
		&models.ExistingTask{ID: "T1", Assets: prior})
	require.NoError(t, err)

	require.Contains(t, api.updated, "T1")
	assert.Equal(t, prior, api.updated["T1"].Assets)
	assert.Equal(t, "T1", api.updated["T1"].ID)
	assert.Empty(t, up.uploaded())
	assert.Empty(t, api.created)
}

func TestSubmit_UpdateAppendsAfterPrior(t *testing.T) {
	api := &fakeAPI{}
	svc := NewTaskService(api, &fakeUploader{})

	_, err := svc.Submit(context.Background(), form("T", models.StageInProgress, models.PriorityMedium), files("c.txt"),
		&models.ExistingTask{ID: "T1", Assets: []string{"X"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "https://cdn/c.txt"}, api.updated["T1"].Assets)
}

func TestSubmit_EmptyIDCreates(t *testing.T) {
	api := &fakeAPI{}
	svc := NewTaskService(api, &fakeUploader{})

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), nil,
		&models.ExistingTask{Assets: []string{"X"}})
	require.NoError(t, err)

	require.Len(t, api.created, 1)
	assert.Equal(t, []string{"X"}, api.created[0].Assets)
}

func TestSubmit_UploadFailureSkipsPersist(t *testing.T) {
	boom := errors.New("host rejected file")
	api := &fakeAPI{}
	up := &fakeUploader{fail: map[string]error{"bad.bin": boom}}
	svc := NewTaskService(api, up)

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("bad.bin"),
		&models.ExistingTask{ID: "T1", Assets: []string{"X"}})
	require.Error(t, err)

	assert.ErrorIs(t, err, common.ErrUploadFailed)
	assert.ErrorIs(t, err, boom)

	var ue *UploadError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 0, ue.Index)
	assert.Equal(t, "bad.bin", ue.Name)

	assert.Equal(t, 0, api.persistCalls())
	assert.Equal(t, "Failed to upload file(s).", common.Message(err))
	assert.False(t, svc.Submitting())
}

func TestSubmit_FailureOfKthFileStopsSequentialUploads(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{fail: map[string]error{"2.bin": errors.New("boom")}}
	svc := NewTaskService(api, up)

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("1.bin", "2.bin", "3.bin"), nil)

	var ue *UploadError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, 1, ue.Index)
	assert.Equal(t, []string{"1.bin", "2.bin"}, up.uploaded())
	assert.Equal(t, 0, api.persistCalls())
}

func TestSubmit_ParallelUploadsKeepSelectionOrder(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{delay: map[string]time.Duration{
		"1": 60 * time.Millisecond,
		"2": 30 * time.Millisecond,
		"3": 0,
	}}
	svc := NewTaskService(api, up, WithConcurrency(3))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("1", "2", "3"),
		&models.ExistingTask{ID: "T1", Assets: []string{"P"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"P", "https://cdn/1", "https://cdn/2", "https://cdn/3"}, api.updated["T1"].Assets)
}

func TestSubmit_ParallelUploadFailure(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{
		fail:  map[string]error{"2": errors.New("boom")},
		delay: map[string]time.Duration{"1": 50 * time.Millisecond},
	}
	svc := NewTaskService(api, up, WithConcurrency(2))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("1", "2"), nil)
	require.ErrorIs(t, err, common.ErrUploadFailed)
	assert.Equal(t, 0, api.persistCalls())
}

func TestSubmit_PersistFailureCarriesServerMessage(t *testing.T) {
	api := &fakeAPI{saveErr: &client.APIError{Op: "create task", StatusCode: 400, Message: "Duplicate title"}}
	svc := NewTaskService(api, &fakeUploader{})

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), nil, nil)
	require.ErrorIs(t, err, common.ErrPersistFailed)
	assert.Equal(t, "Duplicate title", common.Message(err))
}

func TestSubmit_PersistFailureGenericMessage(t *testing.T) {
	api := &fakeAPI{saveErr: errors.New("connection reset")}
	svc := NewTaskService(api, &fakeUploader{})

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), nil, nil)
	require.ErrorIs(t, err, common.ErrPersistFailed)
	assert.Equal(t, "Failed to save the task.", common.Message(err))
}

func TestSubmit_InvalidFormMakesNoCalls(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}
	svc := NewTaskService(api, up)

	f := form("", models.StageTodo, models.PriorityNormal)
	_, err := svc.Submit(context.Background(), f, files("a"), nil)
	require.ErrorIs(t, err, common.ErrInvalidForm)
	assert.Contains(t, common.Message(err), "title is required")
	assert.Empty(t, up.uploaded())
	assert.Equal(t, 0, api.persistCalls())
}

func TestSubmit_BlankTitleIsMissing(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{}
	svc := NewTaskService(api, up)

	_, err := svc.Submit(context.Background(), form("   ", models.StageTodo, models.PriorityNormal), nil, nil)
	require.ErrorIs(t, err, common.ErrInvalidForm)
	assert.Contains(t, common.Message(err), "title is required")
	assert.Equal(t, 0, api.persistCalls())
}

func TestSubmit_ParallelStopsStartingAfterFailure(t *testing.T) {
	api := &fakeAPI{}
	up := &fakeUploader{
		fail:  map[string]error{"1": errors.New("boom")},
		delay: map[string]time.Duration{"2": 5 * time.Second},
	}
	svc := NewTaskService(api, up, WithConcurrency(2))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("1", "2", "3", "4"), nil)
	require.ErrorIs(t, err, common.ErrUploadFailed)

	var ue *UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "1", ue.Name)
	assert.ElementsMatch(t, []string{"1", "2"}, up.uploaded())
	assert.Equal(t, 0, api.persistCalls())
}

func TestSubmit_ExpiredTokenBeforeUploads(t *testing.T) {
	api := &fakeAPI{tokenErr: common.ErrTokenExpired}
	up := &fakeUploader{}
	svc := NewTaskService(api, up)

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("a"), nil)
	require.ErrorIs(t, err, common.ErrTokenExpired)
	assert.Empty(t, up.uploaded())
	assert.Equal(t, "Your session has expired. Please sign in again.", common.Message(err))
}

func TestSubmit_DefaultMessage(t *testing.T) {
	api := &fakeAPI{createRes: &client.SaveResult{}}
	svc := NewTaskService(api, &fakeUploader{})

	msg, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultSavedMessage, msg)
}

func TestSubmit_InProgressFlag(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	svc := NewTaskService(api, &fakeUploader{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), nil, nil)
		done <- err
	}()

	require.Eventually(t, svc.Submitting, time.Second, 5*time.Millisecond)

	_, err := svc.Submit(context.Background(), form("T2", models.StageTodo, models.PriorityNormal), nil, nil)
	require.ErrorIs(t, err, common.ErrSubmitInProgress)

	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, svc.Submitting())
	assert.Len(t, api.created, 1)
}

func newJournal(t *testing.T) uploads.Repository {
	t.Helper()
	db, dialect, err := client.InitDatabase(context.Background(), client.DriverSQLite, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return uploads.NewSQLRepository(db, dialect)
}

func TestSubmit_JournalCommitted(t *testing.T) {
	journal := newJournal(t)
	api := &fakeAPI{createRes: &client.SaveResult{Message: "ok", Task: &models.Task{ID: "NEW1"}}}
	svc := NewTaskService(api, &fakeUploader{}, WithJournal(journal))
	svc.(*taskService).newID = sequentialIDs()

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("a", "b"), nil)
	require.NoError(t, err)

	recs, err := journal.ListByAttempt(context.Background(), "id-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, uploads.StatusCommitted, r.Status)
		assert.Equal(t, "NEW1", r.TaskID)
		assert.Len(t, r.Digest, 64)
	}

	orphans, err := journal.ListOrphaned(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestSubmit_JournalOrphansOnUploadFailure(t *testing.T) {
	journal := newJournal(t)
	up := &fakeUploader{fail: map[string]error{"3": errors.New("boom")}}
	svc := NewTaskService(&fakeAPI{}, up, WithJournal(journal))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("1", "2", "3"), nil)
	require.ErrorIs(t, err, common.ErrUploadFailed)

	orphans, err := journal.ListOrphaned(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 2)

	urls := []string{orphans[0].URL, orphans[1].URL}
	assert.ElementsMatch(t, []string{"https://cdn/1", "https://cdn/2"}, urls)
}

func TestSubmit_JournalOrphansOnPersistFailure(t *testing.T) {
	journal := newJournal(t)
	svc := NewTaskService(&fakeAPI{saveErr: errors.New("down")}, &fakeUploader{}, WithJournal(journal))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("a"),
		&models.ExistingTask{ID: "T1"})
	require.ErrorIs(t, err, common.ErrPersistFailed)

	orphans, err := journal.ListOrphaned(context.Background())
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, "a", orphans[0].FileName)
}

type brokenJournal struct {
	uploads.Repository
}

func (brokenJournal) AddAll(context.Context, []*uploads.Record) error { return errors.New("disk full") }
func (brokenJournal) Commit(context.Context, string, string) (int64, error) {
	return 0, errors.New("disk full")
}

func TestSubmit_JournalFailureDoesNotFailSubmission(t *testing.T) {
	api := &fakeAPI{}
	svc := NewTaskService(api, &fakeUploader{}, WithJournal(brokenJournal{}))

	_, err := svc.Submit(context.Background(), form("T", models.StageTodo, models.PriorityNormal), files("a"), nil)
	require.NoError(t, err)
	assert.Len(t, api.created, 1)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
}

func TestToggleSubTask_TwiceRestoresValue(t *testing.T) {
	api := &fakeAPI{}
	svc := NewTaskService(api, &fakeUploader{})
	ctx := context.Background()

	current := false
	_, err := svc.ToggleSubTask(ctx, "T1", "S1", current)
	require.NoError(t, err)
	current = api.statuses[0]

	_, err = svc.ToggleSubTask(ctx, "T1", "S1", current)
	require.NoError(t, err)
	current = api.statuses[1]

	assert.Equal(t, []bool{true, false}, api.statuses)
	assert.False(t, current)
	assert.False(t, svc.Toggling())
}

func TestToggleSubTask_Failure(t *testing.T) {
	api := &fakeAPI{toggleErr: &client.APIError{Op: "change sub-task status", StatusCode: 500}}
	svc := NewTaskService(api, &fakeUploader{})

	_, err := svc.ToggleSubTask(context.Background(), "T1", "S1", true)
	require.ErrorIs(t, err, common.ErrToggleFailed)
	require.ErrorIs(t, err, common.ErrUnavailable)
	assert.Equal(t, "Failed to update the sub-task.", common.Message(err))
	assert.False(t, svc.Toggling())
}

func TestAppendActivity(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

	t.Run("synthesized when server omits activity", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewTaskService(api, &fakeUploader{}, WithClock(func() time.Time { return now }))

		act, err := svc.AppendActivity(context.Background(), "T1", "In-Progress", "  halfway  ")
		require.NoError(t, err)
		assert.Equal(t, &models.Activity{Type: models.ActivityInProgress, Body: "halfway", Date: now}, act)
		assert.Equal(t, []models.ActivityType{models.ActivityInProgress}, api.posted)
	})

	t.Run("server echo wins", func(t *testing.T) {
		echo := &models.Activity{ID: "a1", Type: models.ActivityBug, Body: "crash", Date: now.Add(-time.Hour)}
		svc := NewTaskService(&fakeAPI{activityRes: &client.ActivityResult{Activity: echo}}, &fakeUploader{})

		act, err := svc.AppendActivity(context.Background(), "T1", models.ActivityBug, "crash")
		require.NoError(t, err)
		assert.Same(t, echo, act)
	})

	t.Run("invalid input", func(t *testing.T) {
		api := &fakeAPI{}
		svc := NewTaskService(api, &fakeUploader{})

		_, err := svc.AppendActivity(context.Background(), "T1", "closed", "x")
		require.ErrorIs(t, err, common.ErrInvalidActivity)

		_, err = svc.AppendActivity(context.Background(), "T1", models.ActivityCommented, "   ")
		require.ErrorIs(t, err, common.ErrInvalidActivity)
		assert.Empty(t, api.posted)
	})

	t.Run("api failure", func(t *testing.T) {
		svc := NewTaskService(&fakeAPI{activityErr: errors.New("down")}, &fakeUploader{})

		_, err := svc.AppendActivity(context.Background(), "T1", models.ActivityCommented, "hi")
		require.ErrorIs(t, err, common.ErrActivityAppendFailed)
	})
}

func TestGetTask(t *testing.T) {
	task := &models.Task{ID: "T1"}
	svc := NewTaskService(&fakeAPI{task: task}, &fakeUploader{})

	got, err := svc.GetTask(context.Background(), "T1")
	require.NoError(t, err)
	assert.Same(t, task, got)

	svc = NewTaskService(&fakeAPI{getErr: common.ErrNotFound}, &fakeUploader{})
	_, err = svc.GetTask(context.Background(), "T1")
	require.ErrorIs(t, err, common.ErrFetchFailed)
	require.ErrorIs(t, err, common.ErrNotFound)
}
