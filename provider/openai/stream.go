package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/llmwire/llmwire/messages"
	"github.com/llmwire/llmwire/provider"
)

// Stream opens a streaming chat completion session. It returns
// immediately; a producer goroutine drives the request and feeds the
// session's event sequence. Failures, including request setup errors, are
// delivered as a terminal Error event rather than returned here.
func (p *Provider) Stream(ctx context.Context, model provider.Model, chatCtx provider.Context) *provider.Stream {
	session := provider.NewStream(model)
	go p.runStream(ctx, model, chatCtx, session)
	return session
}

func (p *Provider) runStream(ctx context.Context, model provider.Model, chatCtx provider.Context, session *provider.Stream) {
	log := p.log.With().
		Stringer("session_id", session.ID()).
		Str("model", model.Name).
		Logger()

	acc := newAccumulator()

	fail := func(err error) {
		log.Error().Err(err).Msg("stream failed")
		session.Emit(provider.Error{
			SessionID: session.ID(),
			Err:       err,
			Timestamp: strfmt.DateTime(time.Now()),
		})
		session.CloseWith(acc.completion(), err)
	}

	// The lifecycle opener and the text block opener are unconditional:
	// they precede the request so even a setup failure is observed as
	// start, text_start, error.
	session.Emit(provider.Start{
		SessionID: session.ID(),
		Model:     model.Name,
		Timestamp: strfmt.DateTime(time.Now()),
	})
	session.Emit(provider.TextStart{})

	params, err := p.buildRequest(model, chatCtx, true)
	if err != nil {
		fail(fmt.Errorf("failed to build request: %w", err))
		return
	}

	log.Debug().Int("messages", len(chatCtx.Messages)).Msg("starting chat completion stream")

	strm := p.client.Chat.Completions.NewStreaming(ctx, params)
	defer strm.Close()

	if strm.Err() != nil {
		fail(strm.Err())
		return
	}

	reason := provider.FinishStop
	for strm.Next() {
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		chunk := strm.Current()
		if chunk.Usage.TotalTokens > 0 || chunk.Usage.PromptTokens > 0 {
			acc.usage = usageFromOpenAI(chunk.Usage)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if fr := string(choice.FinishReason); fr != "" {
			reason = finishReason(fr)
		}

		if choice.Delta.Content != "" {
			acc.text.WriteString(choice.Delta.Content)
			session.Emit(provider.TextDelta{Delta: choice.Delta.Content})
		}

		for _, tc := range choice.Delta.ToolCalls {
			events, err := acc.addToolCallFragment(int(tc.Index), tc.ID, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				fail(err)
				return
			}
			for _, event := range events {
				session.Emit(event)
			}
		}
	}

	if err := strm.Err(); err != nil {
		fail(err)
		return
	}
	if err := ctx.Err(); err != nil {
		fail(err)
		return
	}

	events, err := acc.closeOpenToolCall()
	if err != nil {
		fail(err)
		return
	}
	for _, event := range events {
		session.Emit(event)
	}

	session.Emit(provider.TextEnd{})
	session.Emit(provider.Done{
		Reason:    reason,
		Usage:     acc.usage,
		Timestamp: strfmt.DateTime(time.Now()),
	})

	log.Debug().Str("reason", string(reason)).Msg("stream complete")
	session.CloseWith(acc.completion(), nil)
}

func finishReason(fr string) provider.FinishReason {
	switch fr {
	case "length":
		return provider.FinishLength
	case "tool_calls":
		return provider.FinishToolCalls
	default:
		return provider.FinishStop
	}
}

// toolCallBuilder merges the incremental fragments of one tool call. ID
// and name typically arrive on the first fragment for an index, argument
// text on the rest.
type toolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

func (b *toolCallBuilder) assemble() (messages.ToolCallBlock, error) {
	args := make(map[string]any)
	if raw := b.arguments.String(); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return messages.ToolCallBlock{}, fmt.Errorf("tool call %s: invalid arguments: %w", b.id, err)
		}
	}
	return messages.ToolCallBlock{ID: b.id, Name: b.name, Arguments: args}, nil
}

// accumulator is the per-session mutable state: the text being
// reassembled, the tool calls being merged, and the usage totals. It is
// owned by the producing goroutine, so no locking is required.
type accumulator struct {
	text  strings.Builder
	calls []*toolCallBuilder
	open  int // index of the tool call currently receiving fragments, -1 when none
	done  []messages.ToolCallBlock
	usage provider.Usage
}

func newAccumulator() *accumulator {
	return &accumulator{open: -1}
}

// addToolCallFragment merges one fragment and returns the sub-protocol
// events it produces: a ToolCallEnd for the previously open call when the
// index advances, a ToolCallStart when this index is first seen, and a
// ToolCallDelta when the fragment carries argument text.
func (a *accumulator) addToolCallFragment(index int, id, name, arguments string) ([]provider.StreamEvent, error) {
	for len(a.calls) <= index {
		a.calls = append(a.calls, &toolCallBuilder{})
	}

	var events []provider.StreamEvent
	if a.open != index {
		closed, err := a.closeOpenToolCall()
		if err != nil {
			return nil, err
		}
		events = append(events, closed...)
	}

	builder := a.calls[index]
	if id != "" {
		builder.id = id
	}
	if name != "" {
		builder.name = name
	}

	if a.open != index {
		a.open = index
		events = append(events, provider.ToolCallStart{Index: index, ID: builder.id, Name: builder.name})
	}

	if arguments != "" {
		builder.arguments.WriteString(arguments)
		events = append(events, provider.ToolCallDelta{Index: index, Arguments: arguments})
	}
	return events, nil
}

// closeOpenToolCall assembles the currently open call, if any, and returns
// its ToolCallEnd event.
func (a *accumulator) closeOpenToolCall() ([]provider.StreamEvent, error) {
	if a.open < 0 {
		return nil, nil
	}

	call, err := a.calls[a.open].assemble()
	if err != nil {
		return nil, err
	}
	a.done = append(a.done, call)

	event := provider.ToolCallEnd{Index: a.open, Call: call}
	a.open = -1
	return []provider.StreamEvent{event}, nil
}

// completion builds the terminal result: one TextBlock for all the text
// deltas (if any text arrived), followed by the assembled tool calls in
// completion order.
func (a *accumulator) completion() provider.Completion {
	var blocks []messages.ContentBlock
	if a.text.Len() > 0 {
		blocks = append(blocks, messages.TextBlock{Text: a.text.String()})
	}
	for _, call := range a.done {
		blocks = append(blocks, call)
	}
	return provider.Completion{
		Message: messages.AssistantMessage{Content: blocks},
		Usage:   a.usage,
	}
}
