package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ConverseAPI is the part of the Bedrock runtime client used here
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon Bedrock
type BedrockClient struct {
	client    ConverseAPI
	modelID   string
	maxTokens int
	logger    *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client ConverseAPI, modelID string, maxTokens int, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends one request through the Converse API, which uses the same
// message shape for every model family
func (c *BedrockClient) Complete(ctx context.Context, req core.CompletionRequest) (*core.Completion, error) {
	userPrompt := req.UserPrompt
	if req.JSONMode {
		userPrompt += "\n\nRespond only with the JSON object and nothing else."
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []types.Message{
			{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: userPrompt}},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(req.Temperature),
		},
	}
	if c.maxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(c.maxTokens))
	}
	if req.SystemPrompt != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: req.SystemPrompt}}
	}

	resp, err := c.client.Converse(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text := outputText(resp)
	if text == "" {
		return nil, core.ErrEmptyCompletion
	}

	c.logger.Debug("Bedrock response received",
		zap.String("model_id", c.modelID),
		zap.String("stop_reason", string(resp.StopReason)))

	return &core.Completion{
		Text:      text,
		ModelUsed: c.modelID,
	}, nil
}

func outputText(resp *bedrockruntime.ConverseOutput) string {
	if resp == nil {
		return ""
	}
	msg, ok := resp.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			b.WriteString(text.Value)
		}
	}
	return b.String()
}
