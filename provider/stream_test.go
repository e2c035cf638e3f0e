package provider

import (
	"errors"
	"testing"

	"github.com/llmwire/llmwire/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func produceText(s *Stream, deltas ...string) {
	s.Emit(Start{SessionID: s.ID(), Model: s.Model().Name})
	s.Emit(TextStart{})

	var text string
	for _, delta := range deltas {
		text += delta
		s.Emit(TextDelta{Delta: delta})
	}
	s.Emit(TextEnd{})
	s.Emit(Done{Reason: FinishStop, Usage: Usage{Input: 3, Output: 2, Cost: Cost{Total: 5}}})

	s.CloseWith(Completion{
		Message: messages.Assistant(messages.Text(text)),
		Usage:   Usage{Input: 3, Output: 2, Cost: Cost{Total: 5}},
	}, nil)
}

func TestStream_EventOrdering(t *testing.T) {
	s := NewStream(GetModel("openai", "gpt-4"))
	go produceText(s, "He", "llo")

	var types []string
	var text string
	for event := range s.Events() {
		switch e := event.(type) {
		case Start:
			types = append(types, "start")
			assert.Equal(t, "gpt-4", e.Model)
		case TextStart:
			types = append(types, "text_start")
		case TextDelta:
			text += e.Delta
		case TextEnd:
			types = append(types, "text_end")
		case Done:
			types = append(types, "done")
		default:
			t.Fatalf("unexpected event %T", event)
		}
	}

	assert.Equal(t, []string{"start", "text_start", "text_end", "done"}, types)
	assert.Equal(t, "Hello", text)
}

func TestStream_ResultDrainsAndCaches(t *testing.T) {
	s := NewStream(GetModel("openai", "gpt-4"))
	go produceText(s, "He", "llo")

	// Result without consuming events first: it drains internally.
	first := s.Result()
	second := s.Result()

	assert.Equal(t, first, second)
	require.Len(t, first.Message.Content, 1)
	assert.Equal(t, messages.Text("Hello"), first.Message.Content[0])
	assert.EqualValues(t, 5, first.Usage.Cost.Total)
	assert.NoError(t, s.Err())
}

func TestStream_ErrAfterFailure(t *testing.T) {
	s := NewStream(GetModel("openai", "gpt-4"))
	boom := errors.New("boom")
	go func() {
		s.Emit(Start{SessionID: s.ID(), Model: "gpt-4"})
		s.Emit(TextStart{})
		s.Emit(Error{SessionID: s.ID(), Err: boom})
		s.CloseWith(Completion{}, boom)
	}()

	var sawDone, sawError bool
	for event := range s.Events() {
		switch event.(type) {
		case Done:
			sawDone = true
		case Error:
			sawError = true
		}
	}

	assert.True(t, sawError)
	assert.False(t, sawDone, "no done event may follow an error")
	assert.ErrorIs(t, s.Err(), boom)
	assert.Empty(t, s.Result().Message.Content)
}
