package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConverse struct {
	input  *bedrockruntime.ConverseInput
	output *bedrockruntime.ConverseOutput
	err    error
}

func (f *fakeConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.output, f.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{Value: types.Message{
			Role:    types.ConversationRoleAssistant,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
		}},
		StopReason: types.StopReasonEndTurn,
	}
}

func TestBedrockClient_Complete(t *testing.T) {
	fake := &fakeConverse{output: textOutput(`{"Noise": [1]}`)}
	client := NewBedrockClient(fake, "anthropic.claude-3-haiku", 512, zap.NewNop())

	completion, err := client.Complete(context.Background(), core.CompletionRequest{
		SystemPrompt: "sort these",
		UserPrompt:   "ID 1 | From: A | Sub: B | Body: C",
		JSONMode:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"Noise": [1]}`, completion.Text)
	assert.Equal(t, "anthropic.claude-3-haiku", completion.ModelUsed)

	require.NotNil(t, fake.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(fake.input.ModelId))
	assert.Equal(t, float32(0), aws.ToFloat32(fake.input.InferenceConfig.Temperature))
	assert.Equal(t, int32(512), aws.ToInt32(fake.input.InferenceConfig.MaxTokens))
	require.Len(t, fake.input.System, 1)
	assert.Equal(t, "sort these", fake.input.System[0].(*types.SystemContentBlockMemberText).Value)
	require.Len(t, fake.input.Messages, 1)
	user := fake.input.Messages[0].Content[0].(*types.ContentBlockMemberText).Value
	assert.Contains(t, user, "ID 1 | From: A")
}

func TestBedrockClient_Errors(t *testing.T) {
	client := NewBedrockClient(&fakeConverse{err: errors.New("throttled")}, "m", 0, zap.NewNop())
	_, err := client.Complete(context.Background(), core.CompletionRequest{UserPrompt: "x"})
	assert.Error(t, err)

	client = NewBedrockClient(&fakeConverse{output: &bedrockruntime.ConverseOutput{}}, "m", 0, zap.NewNop())
	_, err = client.Complete(context.Background(), core.CompletionRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, core.ErrEmptyCompletion)
}
