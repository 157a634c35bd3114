package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/sirupsen/logrus"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// OpenAIAdapter implements Model using the OpenAI Go SDK against any
// OpenAI-compatible base URL
type OpenAIAdapter struct {
	client  *openai.Client
	modelID string
	logger  logrus.FieldLogger
}

// NewOpenAIAdapter builds the SDK client and wraps it
func NewOpenAIAdapter(cfg OpenAIConfig, logger logrus.FieldLogger) *OpenAIAdapter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// The generator owns the single-call policy
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openai.NewClient(opts...)
	return &OpenAIAdapter{
		client:  &client,
		modelID: cfg.ModelID,
		logger:  logger,
	}
}

// GenerateContent implements the Model interface
func (o *OpenAIAdapter) GenerateContent(ctx context.Context, messages []MessageContent, options ...CallOption) (*ContentResponse, error) {
	opts := &CallOptions{}
	for _, opt := range options {
		opt(opts)
	}

	modelID := o.modelID
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelID),
		Messages: convertMessages(messages),
	}

	if opts.Temperature > 0 {
		params.Temperature = param.NewOpt(opts.Temperature)
	}

	start := time.Now()
	result, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		o.logger.WithFields(logrus.Fields{
			"model":    modelID,
			"messages": len(messages),
			"elapsed":  time.Since(start).Round(time.Millisecond),
		}).WithError(err).Error("Completion request failed")
		return nil, fmt.Errorf("openai generate content: %w", err)
	}

	o.logger.WithFields(logrus.Fields{
		"model":   modelID,
		"choices": len(result.Choices),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("Completion request succeeded")

	return convertResponse(result), nil
}

// convertMessages converts messages to the OpenAI message format
func convertMessages(messages []MessageContent) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case ChatMessageTypeSystem:
			out = append(out, openai.SystemMessage(msg.Text))
		case ChatMessageTypeAI:
			out = append(out, openai.AssistantMessage(msg.Text))
		default:
			out = append(out, openai.UserMessage(msg.Text))
		}
	}
	return out
}

// convertResponse converts an OpenAI response to a ContentResponse
func convertResponse(result *openai.ChatCompletion) *ContentResponse {
	if result == nil {
		return &ContentResponse{}
	}

	choices := make([]*ContentChoice, 0, len(result.Choices))
	for _, choice := range result.Choices {
		choices = append(choices, &ContentChoice{
			Content:    choice.Message.Content,
			StopReason: choice.FinishReason,
		})
	}
	return &ContentResponse{Choices: choices}
}
