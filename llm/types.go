package llm

import "context"

// Model is the completion-service contract the generator depends on
type Model interface {
	GenerateContent(ctx context.Context, messages []MessageContent, options ...CallOption) (*ContentResponse, error)
}

// ChatMessageType represents the role of a chat message
type ChatMessageType string

const (
	ChatMessageTypeSystem ChatMessageType = "system"
	ChatMessageTypeHuman  ChatMessageType = "human"
	ChatMessageTypeAI     ChatMessageType = "ai"
)

// MessageContent represents a message in the conversation
type MessageContent struct {
	Role ChatMessageType
	Text string
}

// ContentResponse represents the response from an LLM
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice represents a single choice in the response
type ContentChoice struct {
	Content    string
	StopReason string
}

// Text returns the content of the first choice, or "" when there is none
func (r *ContentResponse) Text() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0] == nil {
		return ""
	}
	return r.Choices[0].Content
}

// CallOptions holds all call options for LLM generation
type CallOptions struct {
	Temperature float64
}

// CallOption is a function type for setting call options
type CallOption func(*CallOptions)
