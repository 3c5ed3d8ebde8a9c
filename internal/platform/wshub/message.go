package wshub

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/threadflow/internal/events"
	"github.com/phrazzld/threadflow/internal/task"
)

const (
	// MessageTypeTaskComplete announces a task that reached a terminal state
	MessageTypeTaskComplete = events.EventTypeTaskComplete

	// MessageTypePong answers any inbound client message
	MessageTypePong = "pong"
)

// Message is the JSON frame sent to subscribers.
type Message struct {
	Type      string `json:"type"`
	TaskID    string `json:"task_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func completionMessage(event *events.CompletionEvent) ([]byte, error) {
	return json.Marshal(Message{
		Type:      MessageTypeTaskComplete,
		TaskID:    event.TaskID.String(),
		Status:    event.Status,
		Timestamp: event.CompletedAt.Unix(),
	})
}

func recordMessage(rec task.CompletionRecord) ([]byte, error) {
	return json.Marshal(Message{
		Type:      MessageTypeTaskComplete,
		TaskID:    rec.TaskID.String(),
		Status:    string(rec.Status),
		Timestamp: rec.CompletedAt.Unix(),
	})
}

func pongMessage(now time.Time) ([]byte, error) {
	return json.Marshal(Message{
		Type:      MessageTypePong,
		Timestamp: now.Unix(),
	})
}
