package llm

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverseAPI struct {
	out  *bedrockruntime.ConverseOutput
	err  error
	last *bedrockruntime.ConverseInput
}

func (f *fakeConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.last = params
	return f.out, f.err
}

func converseText(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}
}

func TestBedrockClientComplete(t *testing.T) {
	fake := &fakeConverseAPI{out: converseText(" hello from bedrock ")}
	c := NewBedrockClient(fake, "")

	resp, err := c.Complete(context.Background(), Request{
		Model:    "anthropic.claude-3-haiku",
		System:   []string{"be brief"},
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello from bedrock", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)

	require.NotNil(t, fake.last)
	assert.Len(t, fake.last.System, 1)
	assert.Len(t, fake.last.Messages, 1)
}

func TestBedrockClientSystemRoleMessagesBecomeSystemBlocks(t *testing.T) {
	fake := &fakeConverseAPI{out: converseText("ok")}
	c := NewBedrockClient(fake, "")

	_, err := c.Complete(context.Background(), Request{
		Model: "m",
		Messages: []Message{
			{Role: RoleSystem, Content: "system rules"},
			{Role: RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, fake.last.System, 1)
	assert.Len(t, fake.last.Messages, 1)
}

func TestBedrockClientRequiresModel(t *testing.T) {
	c := NewBedrockClient(&fakeConverseAPI{}, "")
	_, err := c.Complete(context.Background(), Request{})
	require.Error(t, err)
}

func TestBedrockClientEmptyOutput(t *testing.T) {
	fake := &fakeConverseAPI{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{}},
	}}
	c := NewBedrockClient(fake, "")

	_, err := c.Complete(context.Background(), Request{Model: "m", Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text content")
}

func TestBedrockClientPinnedModelOverridesRequest(t *testing.T) {
	fake := &fakeConverseAPI{out: converseText("ok")}
	c := NewBedrockClient(fake, "anthropic.claude-3-sonnet")

	_, err := c.Complete(context.Background(), Request{
		Model:    "gpt-4o",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	require.NotNil(t, fake.last.ModelId)
	assert.Equal(t, "anthropic.claude-3-sonnet", *fake.last.ModelId)
}
