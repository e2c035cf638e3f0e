package messages

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextBlock_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Text("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"text","text":"hello"}`, string(data))
}

func TestToolCallBlock_MarshalJSON(t *testing.T) {
	block := ToolCallBlock{
		ID:        "call_1",
		Name:      "get_weather",
		Arguments: map[string]any{"city": "Paris"},
	}

	data, err := json.Marshal(block)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"toolCall","id":"call_1","name":"get_weather","arguments":{"city":"Paris"}}`, string(data))
}

func TestUnmarshalContentBlock(t *testing.T) {
	block, err := UnmarshalContentBlock([]byte(`{"type":"toolCall","id":"c1","name":"f","arguments":{"x":1}}`))
	require.NoError(t, err)

	call, ok := block.(ToolCallBlock)
	require.True(t, ok)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "f", call.Name)
	assert.Equal(t, map[string]any{"x": float64(1)}, call.Arguments)
}

func TestUnmarshalContentBlock_UnknownType(t *testing.T) {
	_, err := UnmarshalContentBlock([]byte(`{"type":"image","url":"https://example.com"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown type")
}

func TestUnmarshalContentBlock_InvalidJSON(t *testing.T) {
	_, err := UnmarshalContentBlock([]byte(`{not json`))
	require.Error(t, err)
}

func TestJoinText(t *testing.T) {
	blocks := []ContentBlock{
		Text("first"),
		ToolCallBlock{ID: "c1", Name: "f"},
		Text("second"),
	}
	assert.Equal(t, "first\nsecond", JoinText(blocks))
	assert.Empty(t, JoinText(nil))
}
