package httpx

import (
	"net/http"
	"time"
)

// APIError is the structured error body every endpoint returns on failure:
// a timestamp, the HTTP status, a short message, and optional detail lines.
type APIError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
}

// NewAPIError builds an APIError stamped with the current UTC time.
func NewAPIError(status int, message string, details ...string) APIError {
	return APIError{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Message:   message,
		Details:   details,
	}
}

// Write serialises the error to w with its embedded status code.
func (e APIError) Write(w http.ResponseWriter) {
	NoCache(w)
	WriteJSON(w, e.Status, e)
}

// WriteError is shorthand for NewAPIError(...).Write(w).
func WriteError(w http.ResponseWriter, status int, message string, details ...string) {
	NewAPIError(status, message, details...).Write(w)
}
