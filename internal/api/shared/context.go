package shared

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

// GetTraceID retrieves the request ID assigned by chi's RequestID middleware.
// If no ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
