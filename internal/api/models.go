package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/threadflow/internal/task"
)

// SubmitTaskRequest defines the payload for the task submission endpoint.
type SubmitTaskRequest struct {
	// Data is the opaque task payload, stored and handed to the executor untouched
	Data json.RawMessage `json:"data" validate:"required"`

	// Priority orders execution; lower values run first. A pointer so that a
	// missing field can be told apart from zero.
	Priority *int `json:"priority" validate:"required"`
}

// SubmitTaskResponse defines the successful response for task submission.
type SubmitTaskResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// PendingTasksResponse reports the number of tasks waiting to be claimed.
type PendingTasksResponse struct {
	Tasks int `json:"tasks"`
}

// CompletedTask is a single entry of the completion history.
type CompletedTask struct {
	TaskID         string `json:"task_id"`
	CompletionTime int64  `json:"completion_time"`
	Status         string `json:"status"`
}

// CompletedTasksResponse is returned by the completion polling endpoints.
// ServerTime is meant to be sent back as the next request's since value.
type CompletedTasksResponse struct {
	CompletedTasks []CompletedTask `json:"completed_tasks"`
	ServerTime     int64           `json:"server_time"`
}

// HealthResponse describes the running service.
type HealthResponse struct {
	Status      string `json:"status"`
	HTTPPort    int    `json:"http_port"`
	Version     string `json:"version"`
	CORS        string `json:"cors"`
	Environment string `json:"environment"`
	Uptime      int64  `json:"uptime"`
}

// completionRecordsToResponse converts task records to their wire form
func completionRecordsToResponse(records []task.CompletionRecord, now time.Time) CompletedTasksResponse {
	out := make([]CompletedTask, 0, len(records))
	for _, rec := range records {
		out = append(out, CompletedTask{
			TaskID:         rec.TaskID.String(),
			CompletionTime: rec.CompletedAt.Unix(),
			Status:         string(rec.Status),
		})
	}
	return CompletedTasksResponse{
		CompletedTasks: out,
		ServerTime:     now.Unix(),
	}
}
