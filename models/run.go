package models

import "time"

// RunState is a position in the round state machine
type RunState string

const (
	RunStateReceived   RunState = "received"
	RunStateGenerating RunState = "generating"
	RunStatePublishing RunState = "publishing"
	RunStateNotifying  RunState = "notifying"
	RunStateDone       RunState = "done"
	RunStateFailed     RunState = "failed"
)

// IsTerminal reports whether no further transitions will happen
func (s RunState) IsTerminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// RunInfo describes one background round execution
type RunInfo struct {
	ID           string    `json:"id"`
	Task         string    `json:"task"`
	Repo         string    `json:"repo,omitempty"`
	Round        int       `json:"round"`
	State        RunState  `json:"state"`
	Error        string    `json:"error,omitempty"`
	FilesCreated int       `json:"files_created"`
	FilesUpdated int       `json:"files_updated"`
	FilesSkipped int       `json:"files_skipped"`
	Notified     bool      `json:"notified"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
