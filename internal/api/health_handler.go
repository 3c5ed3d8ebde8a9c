package api

import (
	"net/http"
	"time"

	"github.com/phrazzld/threadflow/internal/api/shared"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// HealthHandler reports liveness and basic deployment facts
type HealthHandler struct {
	port        int
	environment string
	startedAt   time.Time
	now         func() time.Time
}

// NewHealthHandler creates a HealthHandler whose uptime counts from startedAt
func NewHealthHandler(port int, environment string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		port:        port,
		environment: environment,
		startedAt:   startedAt,
		now:         time.Now,
	}
}

// Health handles GET /health requests
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "ok",
		HTTPPort:    h.port,
		Version:     Version,
		CORS:        "enabled",
		Environment: h.environment,
		Uptime:      int64(h.now().Sub(h.startedAt) / time.Second),
	})
}
