package messages

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	userMessageJSON       = []byte(`{"role":"user"}`)
	assistantMessageJSON  = []byte(`{"role":"assistant"}`)
	toolResultMessageJSON = []byte(`{"role":"toolResult"}`)
)

// Message is one entry in a conversation history, tagged by role. The set
// of variants is closed: user, assistant, and tool result.
type Message interface {
	message()
}

// UserMessage is a plain text message from the user.
type UserMessage struct {
	Content string `json:"content"`
}

func (UserMessage) message() {}

// User builds a UserMessage.
func User(content string) UserMessage {
	return UserMessage{Content: content}
}

// AssistantMessage is a model response: an ordered sequence of content
// blocks that may mix text and tool calls. Order reflects emission order.
type AssistantMessage struct {
	Content []ContentBlock `json:"content"`
}

func (AssistantMessage) message() {}

// Assistant builds an AssistantMessage from content blocks.
func Assistant(blocks ...ContentBlock) AssistantMessage {
	return AssistantMessage{Content: blocks}
}

// Text joins the message's text blocks with newlines.
func (a AssistantMessage) Text() string {
	return JoinText(a.Content)
}

// ToolCalls returns the tool call blocks in emission order.
func (a AssistantMessage) ToolCalls() []ToolCallBlock {
	var calls []ToolCallBlock
	for _, block := range a.Content {
		if call, ok := block.(ToolCallBlock); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

// ToolResultMessage carries the outcome of a tool invocation back into the
// conversation. IsError is caller-supplied, never inferred from content.
// Timestamp is epoch milliseconds.
type ToolResultMessage struct {
	ToolCallID string         `json:"toolCallId"`
	ToolName   string         `json:"toolName"`
	Content    []ContentBlock `json:"content"`
	IsError    bool           `json:"isError"`
	Timestamp  int64          `json:"timestamp"`
}

func (ToolResultMessage) message() {}

// ToolResult builds a ToolResultMessage stamped with the current time.
func ToolResult(toolCallID, toolName string, isError bool, blocks ...ContentBlock) ToolResultMessage {
	return ToolResultMessage{
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Content:    blocks,
		IsError:    isError,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// MarshalJSON implements custom JSON marshaling for UserMessage.
func (u UserMessage) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(userMessageJSON, "content", u.Content)
}

// UnmarshalJSON implements custom JSON unmarshaling for UserMessage.
func (u *UserMessage) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	role := gjson.GetBytes(data, "role")
	if !role.Exists() || role.String() != "user" {
		return fmt.Errorf("missing or invalid role, expected 'user'")
	}

	u.Content = gjson.GetBytes(data, "content").String()
	return nil
}

// MarshalJSON implements custom JSON marshaling for AssistantMessage.
func (a AssistantMessage) MarshalJSON() ([]byte, error) {
	blocks, err := json.Marshal(a.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}
	return sjson.SetRawBytes(assistantMessageJSON, "content", blocks)
}

// UnmarshalJSON implements custom JSON unmarshaling for AssistantMessage.
func (a *AssistantMessage) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	role := gjson.GetBytes(data, "role")
	if !role.Exists() || role.String() != "assistant" {
		return fmt.Errorf("missing or invalid role, expected 'assistant'")
	}

	blocks, err := unmarshalContentBlocks(gjson.GetBytes(data, "content"))
	if err != nil {
		return err
	}
	a.Content = blocks
	return nil
}

// MarshalJSON implements custom JSON marshaling for ToolResultMessage.
func (t ToolResultMessage) MarshalJSON() ([]byte, error) {
	result := toolResultMessageJSON

	var err error
	result, err = sjson.SetBytes(result, "toolCallId", t.ToolCallID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "toolName", t.ToolName)
	if err != nil {
		return nil, err
	}

	blocks, err := json.Marshal(t.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal content: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "content", blocks)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "isError", t.IsError)
	if err != nil {
		return nil, err
	}

	return sjson.SetBytes(result, "timestamp", t.Timestamp)
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolResultMessage.
func (t *ToolResultMessage) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	role := gjson.GetBytes(data, "role")
	if !role.Exists() || role.String() != "toolResult" {
		return fmt.Errorf("missing or invalid role, expected 'toolResult'")
	}

	t.ToolCallID = gjson.GetBytes(data, "toolCallId").String()
	t.ToolName = gjson.GetBytes(data, "toolName").String()
	t.IsError = gjson.GetBytes(data, "isError").Bool()
	t.Timestamp = gjson.GetBytes(data, "timestamp").Int()

	blocks, err := unmarshalContentBlocks(gjson.GetBytes(data, "content"))
	if err != nil {
		return err
	}
	t.Content = blocks
	return nil
}

// UnmarshalMessage decodes a single role-tagged message.
func UnmarshalMessage(data []byte) (Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	switch role := gjson.GetBytes(data, "role").String(); role {
	case "user":
		var msg UserMessage
		if err := msg.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return msg, nil
	case "assistant":
		var msg AssistantMessage
		if err := msg.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return msg, nil
	case "toolResult":
		var msg ToolResultMessage
		if err := msg.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("message has an unknown role %q", role)
	}
}
