// Package llmwire is a minimal abstraction layer over chat-completion API
// providers. It normalizes a conversation (provider.Context) and model
// selector (provider.Model) into provider wire calls, and converts the
// response, one payload or an incremental stream of chunks, into a
// provider-agnostic event and message protocol.
//
// Two entry points compose over one data model:
//
//   - Complete: synchronous request/response, blocking until the provider
//     returns one message
//   - Stream: incremental request returning immediately with a lazy event
//     sequence and a deferred terminal result
//
// Example usage:
//
//	model := llmwire.GetModel("openai", "gpt-4o-mini")
//	chatCtx := provider.Context{
//	    SystemPrompt: "You are a helpful assistant",
//	    Messages:     []messages.Message{messages.User("Hello!")},
//	}
//
//	session := llmwire.Stream(ctx, model, chatCtx)
//	for event := range session.Events() {
//	    if delta, ok := event.(provider.TextDelta); ok {
//	        fmt.Print(delta.Delta)
//	    }
//	}
//	final := session.Result()
//
// Providers are pooled in a registry keyed by name; the "openai" provider
// is constructed on first use from OPENAI_API_KEY and OPENAI_BASE_URL.
// Applications can replace it, or add their own backends, with Register.
package llmwire
