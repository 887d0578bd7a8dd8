package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SessionResponse carries the caller's session identifier
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// IDResponse carries the id of a created record. An empty id means the
// write was not persisted.
type IDResponse struct {
	ID string `json:"id"`
}

// AcceptedResponse acknowledges a fire-and-forget tracking call
type AcceptedResponse struct {
	Status string `json:"status"`
}

// DataResponse wraps analytics result sets
type DataResponse struct {
	Data      any    `json:"data"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}
