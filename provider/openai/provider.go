package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fogfish/opts"
	json "github.com/goccy/go-json"
	"github.com/llmwire/llmwire/messages"
	"github.com/llmwire/llmwire/pkg/jsonx"
	"github.com/llmwire/llmwire/pkg/stdx"
	"github.com/llmwire/llmwire/provider"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rs/zerolog"
)

// Config carries construction options for the OpenAI provider.
type Config struct {
	// APIKey authenticates against the API. When empty the underlying
	// client falls back to its own environment handling.
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for proxies or test servers.
	BaseURL string

	// Temperature is the sampling temperature sent with every request.
	Temperature float64

	// Log receives stream lifecycle events. Defaults to a nop logger.
	Log zerolog.Logger

	// Client, when set, is used instead of constructing one from APIKey
	// and BaseURL. This lets applications pool a shared client handle.
	Client *openai.Client
}

var (
	// WithAPIKey sets the API key used to authenticate requests.
	WithAPIKey = opts.ForName[Config, string]("APIKey")

	// WithBaseURL sets the API endpoint base URL.
	WithBaseURL = opts.ForName[Config, string]("BaseURL")

	// WithTemperature sets the sampling temperature for all requests.
	WithTemperature = opts.ForName[Config, float64]("Temperature")

	// WithLogger sets the logger used for stream lifecycle events.
	WithLogger = opts.ForName[Config, zerolog.Logger]("Log")

	// WithClient injects a shared wire client instead of constructing one.
	WithClient = opts.ForName[Config, *openai.Client]("Client")
)

// Provider talks to OpenAI's chat completions API. It holds no per-call
// state; every Complete/Stream invocation is independent.
type Provider struct {
	client      *openai.Client
	temperature float64
	log         zerolog.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New builds a Provider from the given options.
func New(options ...opts.Option[Config]) (*Provider, error) {
	cfg := Config{
		Temperature: 0.1,
		Log:         zerolog.Nop(),
	}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, err
	}

	client := cfg.Client
	if client == nil {
		var reqOpts []option.RequestOption
		if cfg.APIKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
		}
		client = openai.NewClient(reqOpts...)
	}

	return &Provider{
		client:      client,
		temperature: cfg.Temperature,
		log:         cfg.Log,
	}, nil
}

// FromEnv builds a Provider from OPENAI_API_KEY and OPENAI_BASE_URL. The
// variables are read when called, not cached at package init.
func FromEnv(options ...opts.Option[Config]) *Provider {
	var envOpts []opts.Option[Config]
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		envOpts = append(envOpts, WithAPIKey(key))
	}
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		envOpts = append(envOpts, WithBaseURL(base))
	}
	return stdx.Must1(New(append(envOpts, options...)...))
}

// Complete issues one blocking chat completion request and translates the
// single response message. Any failure, including malformed tool-call
// arguments, is returned to the caller unretried.
func (p *Provider) Complete(ctx context.Context, model provider.Model, chatCtx provider.Context) (*provider.Completion, error) {
	params, err := p.buildRequest(model, chatCtx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	p.log.Debug().Str("model", model.Name).Int("messages", len(chatCtx.Messages)).Msg("chat completion")

	chat, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	choice := chat.Choices[0].Message
	var blocks []messages.ContentBlock
	if choice.Content != "" {
		blocks = append(blocks, messages.TextBlock{Text: choice.Content})
	}
	for _, tc := range choice.ToolCalls {
		args, err := parseArguments(tc.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool call %s: %w", tc.ID, err)
		}
		blocks = append(blocks, messages.ToolCallBlock{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	return &provider.Completion{
		Message: messages.AssistantMessage{Content: blocks},
		Usage:   usageFromOpenAI(chat.Usage),
	}, nil
}

func (p *Provider) buildRequest(model provider.Model, chatCtx provider.Context, stream bool) (openai.ChatCompletionNewParams, error) {
	history, err := historyToOpenAI(chatCtx)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Messages:    openai.F(history),
		Model:       openai.F(model.Name),
		N:           openai.Int(1),
		Temperature: openai.Float(p.temperature),
	}

	if len(chatCtx.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(chatCtx.Tools))
		for i, t := range chatCtx.Tools {
			jv, err := jsonx.ToDynamicJSON(t.Parameters)
			if err != nil {
				return openai.ChatCompletionNewParams{}, fmt.Errorf("tool %s has an invalid parameter schema: %w", t.Name, err)
			}

			def := openai.FunctionDefinitionParam{
				Name:       openai.String(t.Name),
				Parameters: openai.F(shared.FunctionParameters(jv)),
			}
			if strings.TrimSpace(t.Description) != "" {
				def.Description = openai.String(t.Description)
			}

			tools[i] = openai.ChatCompletionToolParam{
				Type:     openai.F(openai.ChatCompletionToolTypeFunction),
				Function: openai.F(def),
			}
		}
		params.Tools = openai.F(tools)
		params.ParallelToolCalls = openai.Bool(true)
	}

	if stream {
		params.StreamOptions = openai.F(openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		})
	}

	return params, nil
}

func historyToOpenAI(chatCtx provider.Context) ([]openai.ChatCompletionMessageParamUnion, error) {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(chatCtx.Messages)+1)
	result = append(result, openai.SystemMessage(chatCtx.SystemPrompt))

	for _, message := range chatCtx.Messages {
		switch msg := message.(type) {
		case messages.UserMessage:
			result = append(result, openai.UserMessageParts(openai.TextPart(msg.Content)))

		case messages.ToolResultMessage:
			result = append(result, openai.ToolMessage(msg.ToolCallID, messages.JoinText(msg.Content)))

		case messages.AssistantMessage:
			param, err := assistantToOpenAI(msg)
			if err != nil {
				return nil, err
			}
			result = append(result, param)

		default:
			return nil, fmt.Errorf("unsupported message type %T", message)
		}
	}
	return result, nil
}

func assistantToOpenAI(msg messages.AssistantMessage) (openai.ChatCompletionMessageParamUnion, error) {
	text := msg.Text()
	calls := msg.ToolCalls()

	if len(calls) == 0 {
		am := openai.ChatCompletionAssistantMessageParam{
			Role: openai.F(openai.ChatCompletionAssistantMessageParamRoleAssistant),
		}
		if text != "" {
			am.Content.Value = append(am.Content.Value, openai.TextPart(text))
		}
		return am, nil
	}

	tcd := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
	for i, call := range calls {
		args, err := json.Marshal(call.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool call %s: failed to marshal arguments: %w", call.ID, err)
		}
		tcd[i] = openai.ChatCompletionMessageToolCallParam{
			ID:   openai.String(call.ID),
			Type: openai.F(openai.ChatCompletionMessageToolCallTypeFunction),
			Function: openai.F(openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      openai.String(call.Name),
				Arguments: openai.String(string(args)),
			}),
		}
	}

	param := openai.ChatCompletionMessageParam{
		Role:      openai.F(openai.ChatCompletionMessageParamRoleAssistant),
		ToolCalls: openai.F[any](tcd),
	}
	if text != "" {
		param.Content = openai.F[any](text)
	}
	return param, nil
}

func parseArguments(raw string) (map[string]any, error) {
	args := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	return args, nil
}

func usageFromOpenAI(u openai.CompletionUsage) provider.Usage {
	return provider.Usage{
		Input:  u.PromptTokens,
		Output: u.CompletionTokens,
		Cost:   provider.Cost{Total: u.TotalTokens},
		Cached: u.PromptTokensDetails.CachedTokens,
	}
}
