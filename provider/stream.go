package provider

import "github.com/google/uuid"

// streamBuffer sizes the event channel so producers can run a little ahead
// of slow consumers without blocking on every chunk.
const streamBuffer = 16

// Stream is one streaming session: a single-pass event sequence paired
// with a deferred terminal result. The event sequence may be consumed by
// only one logical consumer; once drained it does not replay.
//
// Provider implementations produce into the stream from a single goroutine
// using Emit and CloseWith. Everything else is the consumer surface.
type Stream struct {
	id     uuid.UUID
	model  Model
	events chan StreamEvent

	// Written by the producer before the channel closes; the close is the
	// publication barrier for readers.
	final Completion
	err   error
}

// NewStream builds an empty session for the given model. Provider
// implementations call this and then drive the producer side.
func NewStream(model Model) *Stream {
	return &Stream{
		id:     uuid.New(),
		model:  model,
		events: make(chan StreamEvent, streamBuffer),
	}
}

// ID is the session identifier, stamped on lifecycle events and logs.
func (s *Stream) ID() uuid.UUID { return s.id }

// Model returns the selector this session was opened for.
func (s *Stream) Model() Model { return s.model }

// Events returns the live event sequence. The channel closes after the
// terminal Done or Error event has been delivered.
func (s *Stream) Events() <-chan StreamEvent { return s.events }

// Result drains any events the caller has not consumed, discarding them,
// and returns the accumulated assistant message and usage. It is
// idempotent: the provider request runs once, and repeated calls return
// the same value without re-draining.
func (s *Stream) Result() Completion {
	for range s.events {
	}
	return s.final
}

// Err reports the terminal failure, if any, after draining the event
// sequence. The same failure is also observable as an Error event.
func (s *Stream) Err() error {
	for range s.events {
	}
	return s.err
}

// Emit delivers the next event to the consumer. Producer side only.
func (s *Stream) Emit(event StreamEvent) {
	s.events <- event
}

// CloseWith records the terminal result and closes the event sequence. It
// must be called exactly once, after the final event was emitted.
func (s *Stream) CloseWith(final Completion, err error) {
	s.final = final
	s.err = err
	close(s.events)
}
