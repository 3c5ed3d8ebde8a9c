package wshub

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/phrazzld/threadflow/internal/api/shared"
	"github.com/phrazzld/threadflow/internal/events"
	"github.com/phrazzld/threadflow/internal/task"
)

// History provides the records replayed to new subscribers. Both methods
// return most recent first.
type History interface {
	CompletedSince(since time.Time) []task.CompletionRecord
	FailedSince(since time.Time) []task.CompletionRecord
}

// Config holds the per-connection limits of a Hub
type Config struct {
	// ClientBuffer is the number of messages queued per client before new
	// ones are dropped
	ClientBuffer int

	// WriteTimeout bounds every write to a client
	WriteTimeout time.Duration

	// PingInterval is how often keepalive pings are sent. A client silent for
	// twice this long is disconnected.
	PingInterval time.Duration

	// AllowedOrigin restricts the Origin header of upgrade requests; "*" or
	// empty allows any origin
	AllowedOrigin string
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		ClientBuffer:  16,
		WriteTimeout:  5 * time.Second,
		PingInterval:  30 * time.Second,
		AllowedOrigin: "*",
	}
}

// Hub tracks connected WebSocket clients and fans completion events out to
// them.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	history  History
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
	now      func() time.Time

	// wg tracks client pumps so Close can wait for them
	wg sync.WaitGroup
}

// NewHub creates a Hub that replays from history on connect. history may be nil.
func NewHub(history History, config Config, logger *slog.Logger) *Hub {
	defaults := DefaultConfig()
	if config.ClientBuffer <= 0 {
		config.ClientBuffer = defaults.ClientBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}

	h := &Hub{
		clients: make(map[*client]struct{}),
		history: history,
		config:  config,
		logger:  logger.With("component", "wshub"),
		now:     time.Now,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeWS upgrades the request and subscribes the connection. Completed and
// failed records newer than the since query parameter are replayed oldest
// first before live events.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	since, err := shared.ParseSince(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid since parameter", err)
		return
	}

	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	if !h.register(conn, since) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.config.WriteTimeout))
		_ = conn.Close()
	}
}

// register adds a client and queues its replay. Both happen under the hub
// lock so no live event can be queued ahead of the replay. It reports false
// once the hub is closed.
func (h *Hub) register(conn *websocket.Conn, since time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	records := h.replayRecords(since)
	replay := make([][]byte, 0, len(records))
	for _, rec := range records {
		msg, err := recordMessage(rec)
		if err != nil {
			continue
		}
		replay = append(replay, msg)
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.config.ClientBuffer+len(replay)),
		done: make(chan struct{}),
	}
	for _, msg := range replay {
		c.send <- msg
	}
	h.clients[c] = struct{}{}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		c.writePump()
	}()
	go func() {
		defer h.wg.Done()
		c.readPump()
	}()

	h.logger.Debug("websocket client connected",
		"remote_addr", conn.RemoteAddr().String(),
		"replayed", len(replay),
		"client_count", len(h.clients))
	return true
}

// replayRecords merges completed and failed history oldest first, the same
// order live events were pushed in.
func (h *Hub) replayRecords(since time.Time) []task.CompletionRecord {
	if h.history == nil {
		return nil
	}

	completed := h.history.CompletedSince(since)
	failed := h.history.FailedSince(since)
	slices.Reverse(completed)
	slices.Reverse(failed)

	records := append(completed, failed...)
	slices.SortStableFunc(records, func(a, b task.CompletionRecord) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})
	return records
}

// unregister removes a client. Removing an unknown client is a no-op.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("websocket client disconnected",
			"dropped_messages", c.dropped.Load(),
			"client_count", count)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleEvent queues the event for every connected client. It never blocks
// on a client: a full buffer drops the message for that client only.
func (h *Hub) HandleEvent(_ context.Context, event *events.CompletionEvent) error {
	msg, err := completionMessage(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if !c.trySend(msg) {
			h.logger.Debug("dropping completion message for slow client",
				"task_id", event.TaskID,
				"dropped_messages", c.dropped.Load())
		}
	}
	return nil
}

// Close disconnects every client, refuses new ones and waits for all
// client goroutines to exit.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	h.wg.Wait()

	h.logger.Info("websocket hub closed", "disconnected", len(clients))
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.config.AllowedOrigin == "" || h.config.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.config.AllowedOrigin
}

var _ events.EventHandler = (*Hub)(nil)
