// Package bridge exposes the task services over a local HTTP API so that a
// browser or desktop front-end can drive the submission workflow with plain
// request/response calls.
package bridge

import (
	"net/http"

	"github.com/dmitrijs2005/taskdesk/internal/client/services"
	"github.com/dmitrijs2005/taskdesk/internal/logging"
)

// NewRouter registers the bridge routes.
func NewRouter(tasks services.TaskService, status services.StatusService, log logging.Logger) http.Handler {
	mux := http.NewServeMux()
	h := NewTaskHandler(tasks, log)

	mux.HandleFunc("POST /tasks", h.Submit)
	mux.HandleFunc("GET /tasks/{id}", h.GetTask)
	mux.HandleFunc("POST /tasks/{id}/subtasks/{subId}/toggle", h.ToggleSubTask)
	mux.HandleFunc("POST /tasks/{id}/activities", h.AppendActivity)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := status.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return withRequestLog(mux, log)
}
