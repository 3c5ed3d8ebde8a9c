package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/threadflow/internal/api/shared"
	"github.com/phrazzld/threadflow/internal/platform/logger"
	"github.com/phrazzld/threadflow/internal/task"
)

// TaskDispatcher is the subset of the dispatcher the HTTP layer needs.
type TaskDispatcher interface {
	Submit(payload json.RawMessage, priority int) (uuid.UUID, error)
	PendingCount() int
	CompletedSince(since time.Time) []task.CompletionRecord
	FailedSince(since time.Time) []task.CompletionRecord
	Stats() task.Stats
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	dispatcher TaskDispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(dispatcher TaskDispatcher, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		dispatcher: dispatcher,
		logger:     logger.With("component", "task_handler"),
		now:        time.Now,
	}
}

// SubmitTask handles POST /submit requests
func (h *TaskHandler) SubmitTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req SubmitTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	id, err := h.dispatcher.Submit(req.Data, *req.Priority)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("task accepted", "task_id", id, "priority", *req.Priority)

	shared.RespondWithJSON(w, r, http.StatusOK, SubmitTaskResponse{
		Status: "success",
		TaskID: id.String(),
	})
}

// PendingTasks handles GET /tasks requests
func (h *TaskHandler) PendingTasks(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, PendingTasksResponse{
		Tasks: h.dispatcher.PendingCount(),
	})
}

// CompletedTasks handles GET /completed-tasks requests
func (h *TaskHandler) CompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.respondWithHistory(w, r, h.dispatcher.CompletedSince)
}

// FailedTasks handles GET /failed-tasks requests
func (h *TaskHandler) FailedTasks(w http.ResponseWriter, r *http.Request) {
	h.respondWithHistory(w, r, h.dispatcher.FailedSince)
}

// Stats handles GET /stats requests
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.dispatcher.Stats())
}

func (h *TaskHandler) respondWithHistory(
	w http.ResponseWriter,
	r *http.Request,
	history func(since time.Time) []task.CompletionRecord,
) {
	since, err := shared.ParseSince(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid since parameter", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, completionRecordsToResponse(history(since), h.now()))
}
