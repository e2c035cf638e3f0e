package provider

import (
	"context"

	"github.com/llmwire/llmwire/messages"
)

// Context carries one full conversation: the system prompt, the ordered
// message history, and the tools the model may call. Callers own history
// management; providers read it and never mutate it.
type Context struct {
	SystemPrompt string             `json:"systemPrompt,omitempty"`
	Messages     []messages.Message `json:"messages"`
	Tools        []Tool             `json:"tools,omitempty"`
}

// Provider is implemented by chat-completion backends.
type Provider interface {
	// Complete issues one blocking request and returns the translated
	// response. Any failure is returned to the caller unretried.
	Complete(context.Context, Model, Context) (*Completion, error)

	// Stream issues an incremental request and returns immediately with the
	// session. Failures are delivered as a terminal Error event on the
	// session, never returned here.
	Stream(context.Context, Model, Context) *Stream
}
