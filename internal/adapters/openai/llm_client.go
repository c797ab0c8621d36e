package openai

import (
	"context"
	"fmt"
	"math"

	"github.com/mikey/inbox-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the LLMClient interface for OpenAI and
// OpenAI-compatible endpoints such as Groq
type OpenAIClient struct {
	client    *openai.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL targets the
// public OpenAI API.
func NewOpenAIClient(apiKey, baseURL, modelName string, maxTokens int, logger *zap.Logger) *OpenAIClient {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends one chat completion request
func (c *OpenAIClient) Complete(ctx context.Context, req core.CompletionRequest) (*core.Completion, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: temperature(req.Temperature),
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, core.ErrEmptyCompletion
	}

	c.logger.Debug("Chat completion received",
		zap.String("model", resp.Model),
		zap.String("id", resp.ID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	model := resp.Model
	if model == "" {
		model = c.modelName
	}

	return &core.Completion{
		Text:      resp.Choices[0].Message.Content,
		ModelUsed: model,
		ID:        resp.ID,
	}, nil
}

// temperature maps 0 to the smallest positive value; the request type drops a
// zero temperature and the server would apply its own default
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
