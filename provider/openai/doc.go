/*
Package openai implements the provider.Provider interface over OpenAI's
chat completions API, for both one-shot and streaming requests.

# Design Decisions

  - Streaming First: the streaming state machine is the core; one-shot
    completion is the degenerate case
  - Injected Client: the wire client can be supplied via WithClient so
    applications own pooling; FromEnv builds one from the environment
  - Errors As Events: streaming failures are absorbed into a terminal
    Error event on the session instead of being returned mid-iteration
  - Thread Safe: a Provider is safe for concurrent use; each session's
    accumulator is private to its producing goroutine

# Configuration

FromEnv reads OPENAI_API_KEY and OPENAI_BASE_URL when called:

	prov := openai.FromEnv()

or construct explicitly:

	prov, err := openai.New(
		openai.WithAPIKey("sk-..."),
		openai.WithBaseURL("https://api.example.com/v1"),
		openai.WithTemperature(0.2),
	)

# Message Handling

Conversation history maps structurally onto the wire format: the system
prompt becomes a leading system message, user messages stay user role,
tool results become tool role messages, and assistant tool-call blocks are
carried as tool_calls rather than flattened away.
*/
package openai
