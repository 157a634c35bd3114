package models

// APIResponse represents a standard API response for the inspection endpoints
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TaskAccepted is returned when a round has been dispatched
type TaskAccepted struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	RunID   string `json:"run_id,omitempty"`
}

// TaskEcho is returned for requests that carry no actionable round
type TaskEcho struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// TaskRejected is returned when the shared secret does not match
type TaskRejected struct {
	Error string `json:"error"`
}
