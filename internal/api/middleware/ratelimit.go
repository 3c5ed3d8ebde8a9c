package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/threadflow/internal/api/shared"
	"golang.org/x/time/rate"
)

// RateLimit returns middleware that admits at most requestsPerSecond
// requests with the given burst, across all clients. Refused requests get 429.
// A non-positive rate disables limiting.
func RateLimit(requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	retryAfter := strconv.Itoa(int(max(time.Second, time.Duration(float64(time.Second)/requestsPerSecond)) / time.Second))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", retryAfter)
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
