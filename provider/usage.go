package provider

import "github.com/llmwire/llmwire/messages"

// Usage is the provider-reported token accounting for one completion.
// The values are passed through as reported: Cost.Total is the provider's
// total token count, not a priced amount.
type Usage struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Cost   Cost  `json:"cost"`
	Cached int64 `json:"cached,omitempty"`
}

// Cost is a stand-in for priced cost, carrying total token counts.
type Cost struct {
	Total int64 `json:"total"`
}

// Completion pairs the final assistant message with its usage accounting.
// It is the terminal result of both Complete and Stream.
type Completion struct {
	Message messages.AssistantMessage `json:"message"`
	Usage   Usage                     `json:"usage"`
}
