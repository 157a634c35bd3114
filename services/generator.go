package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"student/llm"
	"student/models"

	"github.com/invopop/jsonschema"
	"github.com/sirupsen/logrus"
)

// ContentGenerator turns a brief and its checks into a file set
type ContentGenerator interface {
	Generate(ctx context.Context, brief string, checks []string) []models.FileRecord
}

// Generator asks the completion service for project files and repairs whatever
// comes back into a minimum viable deliverable. It never fails: model errors and
// unparsable output degrade to a fixed fallback set.
type Generator struct {
	model  llm.Model
	cfg    GeneratorConfig
	logger logrus.FieldLogger
	schema string
}

// GeneratorConfig tunes the completion call
type GeneratorConfig struct {
	// Timeout of zero leaves the call bounded only by ctx
	Timeout time.Duration
	// Temperature of zero uses the provider default
	Temperature float64
}

func NewGenerator(model llm.Model, cfg GeneratorConfig, logger logrus.FieldLogger) *Generator {
	return &Generator{
		model:  model,
		cfg:    cfg,
		logger: logger,
		schema: fileRecordSchema(),
	}
}

// Generate implements ContentGenerator
func (g *Generator) Generate(ctx context.Context, brief string, checks []string) []models.FileRecord {
	if strings.TrimSpace(brief) == "" {
		g.logger.Info("No brief supplied, using fallback file set")
		return FallbackFiles("")
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	prompt := BuildPrompt(brief, checks, g.schema)
	resp, err := g.model.GenerateContent(ctx, []llm.MessageContent{
		llm.TextPart(llm.ChatMessageTypeHuman, prompt),
	}, llm.WithTemperature(g.cfg.Temperature))
	if err != nil {
		g.logger.WithError(err).Warn("Completion service failed, using fallback file set")
		return FallbackFiles(brief)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("Completion service returned no text, using fallback file set")
		return FallbackFiles(brief)
	}

	files, err := ParseGeneratedFiles(text, brief)
	if err != nil {
		g.logger.WithError(err).WithField("response_chars", len(text)).Warn("Failed to parse model output, using fallback file set")
		return FallbackFiles(brief)
	}

	g.logger.WithField("files", len(files)).Info("Generated file set")
	return files
}

// BuildPrompt renders the single generation prompt
func BuildPrompt(brief string, checks []string, schema string) string {
	var checklist strings.Builder
	if len(checks) == 0 {
		checklist.WriteString("- (no specific checks provided)\n")
	}
	for _, check := range checks {
		fmt.Fprintf(&checklist, "- %s\n", strings.TrimSpace(check))
	}

	return fmt.Sprintf(`You are a code generator building a small static web project that will be served from GitHub Pages.

Brief:
%s

The result will be evaluated against these checks:
%s
Produce every file the project needs, including a README.md that explains the project, its usage and its license.

Return ONLY a JSON array. Each element must match this JSON schema:
%s

Example:
[{"name": "index.html", "content": "<!DOCTYPE html>..."}, {"name": "README.md", "content": "# Project..."}]

Do not wrap the array in markdown and do not add commentary.`, strings.TrimSpace(brief), checklist.String(), schema)
}

// ParseGeneratedFiles extracts the file array from raw model text and runs the
// repair pipeline over it. It fails only when no JSON array can be decoded.
func ParseGeneratedFiles(text, brief string) ([]models.FileRecord, error) {
	files, err := extractFileArray(text)
	if err != nil {
		return nil, err
	}
	return Repair(files, brief), nil
}

// extractFileArray tries the whole text first, then a fenced block, then the
// outermost [...] span
func extractFileArray(text string) ([]models.FileRecord, error) {
	candidates := []string{strings.TrimSpace(text)}
	if fenced, ok := fencedBlock(text); ok {
		candidates = append(candidates, fenced)
	}
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		candidates = append(candidates, text[start:end+1])
	}

	var lastErr error
	for _, candidate := range candidates {
		var files []models.FileRecord
		if err := json.Unmarshal([]byte(candidate), &files); err != nil {
			lastErr = err
			continue
		}
		return files, nil
	}
	return nil, fmt.Errorf("no JSON file array in model output: %w", lastErr)
}

// fencedBlock returns the body of the first ``` fenced block
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// Skip the info string (```json)
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func fileRecordSchema() string {
	r := &jsonschema.Reflector{
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	data, err := json.MarshalIndent(r.Reflect(&models.FileRecord{}), "", "  ")
	if err != nil {
		return `{"type":"object","properties":{"name":{"type":"string"},"content":{"type":"string"}},"required":["name","content"]}`
	}
	return string(data)
}
