package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dkaryakin/inflow/internal/model"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured and reachable
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Classify turns raw captured text into a structured classification
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (*model.Classification, error) {
	prompt := BuildClassifyPrompt(req.Input, req.CapturedAt)

	raw, err := p.complete(ctx, prompt, 1500)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Category    string  `json:"category"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Content     string  `json:"content"`
		ContentType string  `json:"content_type"`
		Confidence  float64 `json:"confidence"`
		StartTime   string  `json:"start_time"`
		EndTime     string  `json:"end_time"`
		Location    string  `json:"location"`
		DoDate      string  `json:"do_date"`
		Deadline    string  `json:"deadline"`
		Analysis    string  `json:"analysis"`
	}
	if err := decodeReply(raw, &wire); err != nil {
		return nil, err
	}

	cls := &model.Classification{
		Category:    model.NormalizeCategory(wire.Category),
		Title:       wire.Title,
		Description: wire.Description,
		Content:     wire.Content,
		ContentType: wire.ContentType,
		Confidence:  wire.Confidence,
		RawInput:    req.Input,
		StartTime:   wire.StartTime,
		EndTime:     wire.EndTime,
		Location:    wire.Location,
		DoDate:      wire.DoDate,
		Deadline:    wire.Deadline,
		CapturedAt:  req.CapturedAt,
		Analysis:    wire.Analysis,
	}
	if cls.Title == "" {
		cls.Title = "Untitled"
	}
	return cls, nil
}

// SelectDestination picks the best candidate destination
func (p *OpenAIProvider) SelectDestination(ctx context.Context, req SelectRequest) (*SelectReply, error) {
	prompt := BuildSelectPrompt(req.Classification, req.Candidates)

	raw, err := p.complete(ctx, prompt, 400)
	if err != nil {
		return nil, err
	}

	var reply SelectReply
	if err := decodeReply(raw, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// MapFields proposes field-value mappings against a destination schema
func (p *OpenAIProvider) MapFields(ctx context.Context, req MapRequest) (*MapReply, error) {
	prompt := BuildMapPrompt(req.Classification, req.Fields)

	raw, err := p.complete(ctx, prompt, p.maxTokens())
	if err != nil {
		return nil, err
	}

	var reply MapReply
	if err := decodeReply(raw, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// IdentifyResearchable reports which empty fields are factually derivable
func (p *OpenAIProvider) IdentifyResearchable(ctx context.Context, req IdentifyRequest) (*IdentifyReply, error) {
	prompt := BuildIdentifyPrompt(req.Classification, req.Fields)

	raw, err := p.complete(ctx, prompt, 1000)
	if err != nil {
		return nil, err
	}

	var reply IdentifyReply
	if err := decodeReply(raw, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// EnrichFields produces best-effort values for researchable fields
func (p *OpenAIProvider) EnrichFields(ctx context.Context, req EnrichRequest) (*EnrichReply, error) {
	today := time.Now().Format("2006-01-02")
	prompt := BuildEnrichPrompt(req.Classification, req.Fields, today)

	raw, err := p.complete(ctx, prompt, 1000)
	if err != nil {
		return nil, err
	}

	var values map[string]any
	if err := decodeReply(raw, &values); err != nil {
		return nil, err
	}

	// Null answers are "I don't know" - drop them here so callers only
	// ever see usable values.
	for k, v := range values {
		if v == nil {
			delete(values, k)
		}
	}
	return &EnrichReply{Values: values}, nil
}

// complete runs one chat completion and returns the raw reply text
func (p *OpenAIProvider) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	chatModel := p.config.Model
	if chatModel == "" {
		chatModel = openai.GPT4o
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) maxTokens() int {
	if p.config.MaxTokens > 0 {
		return p.config.MaxTokens
	}
	return 2000
}

// decodeReply extracts the JSON object from a model reply and unmarshals it.
// Models wrap JSON in prose or code fences often enough that cutting to the
// outermost braces first is the reliable move.
func decodeReply(text string, out any) error {
	payload, err := extractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return fmt.Errorf("malformed reply: %w", err)
	}
	return nil
}

// extractJSON returns the outermost {...} object embedded in text
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in reply")
	}
	return text[start : end+1], nil
}
