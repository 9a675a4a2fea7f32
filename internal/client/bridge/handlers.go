package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskdesk/internal/client/client"
	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/services"
	"github.com/dmitrijs2005/taskdesk/internal/common"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

const maxFormMemory = 32 << 20

type TaskHandler struct {
	tasks services.TaskService
	log   logging.Logger
}

func NewTaskHandler(tasks services.TaskService, log logging.Logger) *TaskHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &TaskHandler{tasks: tasks, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": common.Message(err)})
}

// statusFor maps workflow errors onto HTTP status codes.
func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, common.ErrSubmitInProgress), errors.Is(err, common.ErrToggleInProgress):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidForm), errors.Is(err, common.ErrInvalidActivity):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500:
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}

// Submit accepts multipart/form-data with the task fields, any number of
// "files" parts, an optional "id" and repeated "asset" values holding the
// task's prior asset URLs.
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", common.ErrInvalidForm, err))
		return
	}

	form, err := formFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", common.ErrInvalidForm, err))
		return
	}

	files, err := filesFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var existing *models.ExistingTask
	if id := strings.TrimSpace(r.FormValue("id")); id != "" || len(r.Form["asset"]) > 0 {
		existing = &models.ExistingTask{ID: id, Assets: r.Form["asset"]}
	}

	msg, err := h.tasks.Submit(r.Context(), form, files, existing)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func formFromRequest(r *http.Request) (models.TaskForm, error) {
	f := models.TaskForm{
		Title:       r.FormValue("title"),
		Date:        r.FormValue("date"),
		Description: r.FormValue("description"),
		Links:       r.FormValue("links"),
		Stage:       models.StageTodo,
		Priority:    models.PriorityNormal,
	}

	var ids []string
	for _, v := range r.Form["team"] {
		ids = append(ids, strings.Split(v, ",")...)
	}
	f.Team = models.TeamFromIDs(ids)

	if s := r.FormValue("stage"); s != "" {
		st, err := models.ParseStage(s)
		if err != nil {
			return f, err
		}
		f.Stage = st
	}
	if p := r.FormValue("priority"); p != "" {
		pr, err := models.ParsePriority(p)
		if err != nil {
			return f, err
		}
		f.Priority = pr
	}
	return f, nil
}

func filesFromRequest(r *http.Request) ([]models.PendingFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	headers := r.MultipartForm.File["files"]
	files := make([]models.PendingFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, models.PendingFileFromBytes(fh.Filename, data))
	}
	return files, nil
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tasks.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":             t,
		"percent_complete": t.PercentComplete(),
	})
}

// ToggleSubTask expects {"status": <current completion flag>} and sends its
// negation.
func (h *TaskHandler) ToggleSubTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status *bool `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	msg, err := h.tasks.ToggleSubTask(r.Context(), r.PathValue("id"), r.PathValue("subId"), *body.Status)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "status": !*body.Status})
}

func (h *TaskHandler) AppendActivity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type     string `json:"type"`
		Activity string `json:"activity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "JSON error: " + err.Error()})
		return
	}

	a, err := h.tasks.AppendActivity(r.Context(), r.PathValue("id"), models.ActivityType(body.Type), body.Activity)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"activity": a})
}
