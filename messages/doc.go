// Package messages defines the conversation data model shared by every
// provider implementation: content blocks and role-tagged messages.
//
// Design decisions:
//   - Closed sum types: ContentBlock and Message are interfaces with
//     unexported marker methods, so the set of variants is fixed at compile
//     time and consumers can switch exhaustively
//   - Tagged JSON: every variant carries a discriminator field ("type" for
//     content blocks, "role" for messages) and round-trips through
//     UnmarshalContentBlock / UnmarshalMessage
//   - Immutable by convention: values are plain records constructed by the
//     caller or by a provider; nothing in this package mutates history
//
// Key concepts:
//   - TextBlock / ToolCallBlock: the two units of assistant output
//   - UserMessage / AssistantMessage / ToolResultMessage: the three roles a
//     conversation is built from
//
// Example usage:
//
//	history := []messages.Message{
//	    messages.User("What's the weather in Paris?"),
//	    messages.Assistant(messages.ToolCallBlock{
//	        ID:        "call_1",
//	        Name:      "get_weather",
//	        Arguments: map[string]any{"city": "Paris"},
//	    }),
//	    messages.ToolResult("call_1", "get_weather", false, messages.Text("18C, sunny")),
//	}
package messages
