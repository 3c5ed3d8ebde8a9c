package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/threadflow/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Back-pressure: the client may retry later
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Bad request errors
	case errors.Is(err, task.ErrValidation),
		errors.Is(err, task.ErrNilTask):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, task.ErrQueueFull):
		return "Task queue is full"
	case errors.Is(err, task.ErrQueueClosed):
		return "Server is shutting down"
	case errors.Is(err, task.ErrValidation):
		return "Invalid task payload"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator output into a short client-facing
// message naming the first offending field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small"
	case "max", "lte":
		return "too large"
	default:
		return "validation failed"
	}
}
