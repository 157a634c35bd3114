package models

// Round numbers accepted by the intake endpoint
const (
	RoundCreate = 1
	RoundRevise = 2
)

// Attachment is a caller-supplied file reference, usually an inline data: URL
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// TaskRequest is the webhook body sent by the evaluator
type TaskRequest struct {
	Secret        string       `json:"secret"`
	Task          string       `json:"task"`
	Round         int          `json:"round"`
	Nonce         any          `json:"nonce,omitempty"`
	Brief         string       `json:"brief,omitempty"`
	Checks        []string     `json:"checks,omitempty"`
	Attachments   []Attachment `json:"attachments,omitempty"`
	EvaluationURL string       `json:"evaluation_url,omitempty"`
}

// IsActionable reports whether the round number triggers any work
func (r TaskRequest) IsActionable() bool {
	return r.Round == RoundCreate || r.Round == RoundRevise
}

// FileRecord is one generated or attached file destined for the repository
type FileRecord struct {
	Name    string `json:"name" jsonschema:"required,description=Repository-relative file path such as index.html or js/app.js"`
	Content string `json:"content" jsonschema:"required,description=Full UTF-8 file content"`
}

// IsComplete reports whether both name and content are set
func (f FileRecord) IsComplete() bool {
	return f.Name != "" && f.Content != ""
}

// CompletionPayload is posted to the evaluation callback once a round is published
type CompletionPayload struct {
	Status string `json:"status"`
	Round  int    `json:"round"`
	Repo   string `json:"repo"`
	Nonce  any    `json:"nonce"`
}

// NewCompletionPayload builds the fixed-shape notification for a finished round
func NewCompletionPayload(round int, repo string, nonce any) CompletionPayload {
	return CompletionPayload{
		Status: "completed",
		Round:  round,
		Repo:   repo,
		Nonce:  nonce,
	}
}
