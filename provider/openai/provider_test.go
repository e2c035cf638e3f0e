package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/llmwire/llmwire/messages"
	"github.com/llmwire/llmwire/provider"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(
		WithAPIKey("sk-test"),
		WithBaseURL(server.URL+"/v1/"),
	)
	require.NoError(t, err)
	return p
}

func testContext() provider.Context {
	return provider.Context{
		SystemPrompt: "Test instructions",
		Messages:     []messages.Message{messages.User("Hello")},
	}
}

func TestNew(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.NotNil(t, p.client)
	assert.Equal(t, 0.1, p.temperature)
}

func TestNew_WithClient(t *testing.T) {
	client := openai.NewClient()
	p, err := New(WithClient(client), WithTemperature(0.7))
	require.NoError(t, err)
	assert.Same(t, client, p.client)
	assert.Equal(t, 0.7, p.temperature)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "https://example.com/v1")

	p := FromEnv()
	assert.NotNil(t, p.client)
}

func TestProvider_buildRequest(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	type searchArgs struct {
		Query string `json:"query"`
	}

	chatCtx := testContext()
	chatCtx.Tools = []provider.Tool{
		provider.ReflectTool[searchArgs]("search", "Search the web"),
	}

	params, err := p.buildRequest(provider.GetModel("openai", "gpt-4o-mini"), chatCtx, false)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", string(params.Model.Value))
	assert.Equal(t, int64(1), params.N.Value)
	assert.Equal(t, 0.1, params.Temperature.Value)
	assert.True(t, params.ParallelToolCalls.Value)
	assert.False(t, params.StreamOptions.Present)

	history := params.Messages.Value
	require.Len(t, history, 2)

	systemMsg := history[0].(openai.ChatCompletionSystemMessageParam)
	assert.Equal(t, "Test instructions", systemMsg.Content.Value[0].Text.Value)

	userMsg := history[1].(openai.ChatCompletionUserMessageParam)
	assert.Equal(t, "Hello", userMsg.Content.Value[0].(openai.ChatCompletionContentPartTextParam).Text.Value)

	tools := params.Tools.Value
	require.Len(t, tools, 1)
	assert.Equal(t, openai.ChatCompletionToolTypeFunction, tools[0].Type.Value)
	assert.Equal(t, "search", tools[0].Function.Value.Name.Value)
	assert.Equal(t, "Search the web", tools[0].Function.Value.Description.Value)
	assert.NotNil(t, tools[0].Function.Value.Parameters.Value)
}

func TestProvider_buildRequest_Streaming(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	params, err := p.buildRequest(provider.GetModel("openai", "gpt-4o-mini"), testContext(), true)
	require.NoError(t, err)
	assert.True(t, params.StreamOptions.Value.IncludeUsage.Value)
}

func TestProvider_buildRequest_ToolHistory(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	chatCtx := provider.Context{
		SystemPrompt: "Test instructions",
		Messages: []messages.Message{
			messages.User("What's the weather in Paris?"),
			messages.Assistant(
				messages.Text("Let me check."),
				messages.ToolCallBlock{ID: "c1", Name: "get_weather", Arguments: map[string]any{"city": "Paris"}},
			),
			messages.ToolResult("c1", "get_weather", false, messages.Text("18C")),
		},
	}

	params, err := p.buildRequest(provider.GetModel("openai", "gpt-4o-mini"), chatCtx, false)
	require.NoError(t, err)

	history := params.Messages.Value
	require.Len(t, history, 4)

	// Assistant tool calls are carried structurally, not flattened away.
	assistant := history[2].(openai.ChatCompletionMessageParam)
	assert.Equal(t, openai.ChatCompletionMessageParamRoleAssistant, assistant.Role.Value)
	calls := assistant.ToolCalls.Value.([]openai.ChatCompletionMessageToolCallParam)
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID.Value)
	assert.Equal(t, "get_weather", calls[0].Function.Value.Name.Value)
	assert.JSONEq(t, `{"city":"Paris"}`, calls[0].Function.Value.Arguments.Value)
	assert.Equal(t, "Let me check.", assistant.Content.Value)

	toolMsg := history[3].(openai.ChatCompletionToolMessageParam)
	assert.Equal(t, "c1", toolMsg.ToolCallID.Value)
}

func TestProvider_Complete(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hi"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15, "prompt_tokens_details": {"cached_tokens": 0}}
		}`)
	})

	result, err := p.Complete(context.Background(), provider.GetModel("openai", "gpt-4o-mini"), testContext())
	require.NoError(t, err)

	require.Len(t, result.Message.Content, 1)
	assert.Equal(t, messages.Text("hi"), result.Message.Content[0])
	assert.Equal(t, provider.Usage{Input: 10, Output: 5, Cost: provider.Cost{Total: 15}}, result.Usage)
}

func TestProvider_Complete_ToolCalls(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-2",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "c1", "type": "function", "function": {"name": "f", "arguments": "{\"x\":1}"}}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 4, "total_tokens": 11}
		}`)
	})

	result, err := p.Complete(context.Background(), provider.GetModel("openai", "gpt-4o-mini"), testContext())
	require.NoError(t, err)

	require.Len(t, result.Message.Content, 1)
	call, ok := result.Message.Content[0].(messages.ToolCallBlock)
	require.True(t, ok)
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "f", call.Name)
	assert.Equal(t, map[string]any{"x": float64(1)}, call.Arguments)
}

func TestProvider_Complete_InvalidToolArguments(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-3",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "c1", "type": "function", "function": {"name": "f", "arguments": "{broken"}}]
				},
				"finish_reason": "tool_calls"
			}]
		}`)
	})

	_, err := p.Complete(context.Background(), provider.GetModel("openai", "gpt-4o-mini"), testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestProvider_Complete_ProviderError(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := p.Complete(context.Background(), provider.GetModel("openai", "gpt-4o-mini"), testContext())
	require.Error(t, err)
}

func TestProvider_Complete_NoChoices(t *testing.T) {
	p := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-4", "object": "chat.completion", "model": "gpt-4o-mini", "choices": []}`)
	})

	_, err := p.Complete(context.Background(), provider.GetModel("openai", "gpt-4o-mini"), testContext())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
