// Package provider implements an abstraction layer for interacting with
// chat-completion providers (like OpenAI) in a consistent way. It defines
// the types that normalize a conversation and model selector into provider
// wire calls, and the event protocol that provider responses are converted
// into.
//
// Design decisions:
//   - Provider abstraction: a single small interface that backends implement
//   - Streaming first: built around an ordered event protocol for
//     incremental responses, with one-shot completion as the simple case
//   - Type-safe events: StreamEvent is a closed sum type, so consumers can
//     switch exhaustively and new variants fail at compile time
//   - Stateless calls: every Complete/Stream invocation is independent; the
//     only mutable state is the per-session accumulator inside a Stream
//   - Error handling: stream failures are absorbed into a terminal Error
//     event rather than surfaced as panics or returned mid-iteration
//
// Key concepts:
//   - Model: opaque {provider, name} selector, validated only by the wire call
//   - Context: system prompt + ordered message history + tool definitions
//   - Stream: one streaming session, pairing a single-pass event sequence
//     with a deferred terminal result
//
// A successful streaming session always produces the event sequence
//
//	Start, TextStart, TextDelta*, (tool-call sub-protocol)*, TextEnd, Done
//
// where the tool-call sub-protocol for each call is
//
//	ToolCallStart, ToolCallDelta*, ToolCallEnd
//
// and any failure replaces the remainder of the sequence with a single
// terminal Error event.
package provider
