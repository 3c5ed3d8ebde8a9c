package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS returns middleware that allows browser clients from allowedOrigin.
// An empty origin allows any.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{allowedOrigin},
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
}
