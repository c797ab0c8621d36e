package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

const defaultMaxTokens = 2048

// AnthropicClient is an implementation of the LLMClient interface using the Anthropic Messages API
type AnthropicClient struct {
	client    anthropic.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client. An empty baseURL targets
// the public API.
func NewAnthropicClient(apiKey, baseURL, modelName string, maxTokens int, logger *zap.Logger) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends one message request
func (c *AnthropicClient) Complete(ctx context.Context, req core.CompletionRequest) (*core.Completion, error) {
	userPrompt := req.UserPrompt
	if req.JSONMode {
		userPrompt += "\n\nRespond only with the JSON object and nothing else."
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.modelName),
		MaxTokens:   int64(c.maxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, core.ErrEmptyCompletion
	}

	c.logger.Debug("Anthropic response received",
		zap.String("model", string(resp.Model)),
		zap.String("stop_reason", string(resp.StopReason)),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens))

	return &core.Completion{
		Text:      text.String(),
		ModelUsed: string(resp.Model),
		ID:        resp.ID,
	}, nil
}
