package errors

import (
	"fmt"
	"net/http"
)

/*
ApiError represents a failed API operation. It carries the HTTP status the
service surface should report alongside a client-facing message.
*/
type ApiError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for ApiError.
*/
func (e *ApiError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// Convenience errors covering the service taxonomy. Bad-Request is always a
// client-fixable input problem, Not-Found a miss on a well-formed id, and
// Backend-Unavailable a storage collaborator failure.
var (
	ErrBadRequest         = &ApiError{Status: http.StatusBadRequest, Message: "Bad request"}
	ErrInvalidID          = &ApiError{Status: http.StatusBadRequest, Message: "Invalid id"}
	ErrTaskNotFound       = &ApiError{Status: http.StatusNotFound, Message: "Task not found"}
	ErrBackendUnavailable = &ApiError{Status: http.StatusServiceUnavailable, Message: "Storage backend unavailable"}
	ErrInternal           = &ApiError{Status: http.StatusInternalServerError, Message: "Internal error"}
)

// WithMessagef creates a *copy* of an ApiError with a formatted message.
// It does not modify the original error variable.
func (e *ApiError) WithMessagef(format string, args ...any) *ApiError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}
