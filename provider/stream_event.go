package provider

import (
	"errors"
	"fmt"

	"github.com/go-openapi/strfmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/llmwire/llmwire/messages"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	startJSON         = []byte(`{"type":"start"}`)
	textStartJSON     = []byte(`{"type":"text_start"}`)
	textDeltaJSON     = []byte(`{"type":"text_delta"}`)
	textEndJSON       = []byte(`{"type":"text_end"}`)
	toolCallStartJSON = []byte(`{"type":"toolcall_start"}`)
	toolCallDeltaJSON = []byte(`{"type":"toolcall_delta"}`)
	toolCallEndJSON   = []byte(`{"type":"toolcall_end"}`)
	doneJSON          = []byte(`{"type":"done"}`)
	errorJSON         = []byte(`{"type":"error"}`)
)

// StreamEvent is one step of a streaming session's ordered event protocol.
// The set of variants is closed; consumers switch exhaustively.
type StreamEvent interface {
	streamEvent()
}

// FinishReason tells why the provider stopped generating.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishLength    FinishReason = "length"
	FinishToolCalls FinishReason = "tool_calls"
)

// Start marks the beginning of the response lifecycle. It is emitted once,
// immediately, regardless of what the provider returns.
type Start struct {
	SessionID uuid.UUID       `json:"session_id"`
	Model     string          `json:"model"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Start) streamEvent() {}

// TextStart opens the text content block. It is emitted once,
// unconditionally, before any content chunk is read.
type TextStart struct {
	Index int `json:"index"`
}

func (TextStart) streamEvent() {}

// TextDelta carries one incremental text fragment. Concatenating every
// delta in emission order reconstructs the full text.
type TextDelta struct {
	Index int    `json:"index"`
	Delta string `json:"delta"`
}

func (TextDelta) streamEvent() {}

// TextEnd closes the text content block after the provider's chunk stream
// is drained.
type TextEnd struct {
	Index int `json:"index"`
}

func (TextEnd) streamEvent() {}

// ToolCallStart opens the tool call at the given content-block index. ID
// and Name come from the first fragment for that index.
type ToolCallStart struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
}

func (ToolCallStart) streamEvent() {}

// ToolCallDelta carries one incremental JSON argument fragment for the
// tool call at the given index.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	Arguments string `json:"arguments"`
}

func (ToolCallDelta) streamEvent() {}

// ToolCallEnd closes a tool call, carrying the fully assembled block with
// its argument fragments merged and decoded.
type ToolCallEnd struct {
	Index int                    `json:"index"`
	Call  messages.ToolCallBlock `json:"call"`
}

func (ToolCallEnd) streamEvent() {}

// Done terminates a successful session with the finish reason and the
// usage totals captured from the provider.
type Done struct {
	Reason    FinishReason    `json:"reason"`
	Usage     Usage           `json:"usage"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Done) streamEvent() {}

// Error replaces the remainder of the sequence when the request or chunk
// iteration fails. It is terminal: no further events follow it.
type Error struct {
	SessionID uuid.UUID       `json:"session_id"`
	Err       error           `json:"error"`
	Timestamp strfmt.DateTime `json:"timestamp,omitempty"`
}

func (Error) streamEvent() {}

func (e Error) Error() string {
	return fmt.Sprintf("session_id: %s, timestamp: %s, error: %v", e.SessionID, e.Timestamp, e.Err)
}

// MarshalJSON implements custom JSON marshaling for Start.
func (s Start) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(startJSON, "session_id", s.SessionID.String())
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "model", s.Model)
	if err != nil {
		return nil, err
	}

	if !s.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", s.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for TextStart.
func (t TextStart) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(textStartJSON, "index", t.Index)
}

// MarshalJSON implements custom JSON marshaling for TextDelta.
func (t TextDelta) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(textDeltaJSON, "index", t.Index)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "delta", t.Delta)
}

// MarshalJSON implements custom JSON marshaling for TextEnd.
func (t TextEnd) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(textEndJSON, "index", t.Index)
}

// MarshalJSON implements custom JSON marshaling for ToolCallStart.
func (t ToolCallStart) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallStartJSON, "index", t.Index)
	if err != nil {
		return nil, err
	}

	if t.ID != "" {
		result, err = sjson.SetBytes(result, "id", t.ID)
		if err != nil {
			return nil, err
		}
	}
	if t.Name != "" {
		result, err = sjson.SetBytes(result, "name", t.Name)
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for ToolCallDelta.
func (t ToolCallDelta) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallDeltaJSON, "index", t.Index)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(result, "arguments", t.Arguments)
}

// MarshalJSON implements custom JSON marshaling for ToolCallEnd.
func (t ToolCallEnd) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(toolCallEndJSON, "index", t.Index)
	if err != nil {
		return nil, err
	}

	call, err := json.Marshal(t.Call)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call: %w", err)
	}
	return sjson.SetRawBytes(result, "call", call)
}

// MarshalJSON implements custom JSON marshaling for Done.
func (d Done) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(doneJSON, "reason", string(d.Reason))
	if err != nil {
		return nil, err
	}

	usage, err := json.Marshal(d.Usage)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal usage: %w", err)
	}
	result, err = sjson.SetRawBytes(result, "usage", usage)
	if err != nil {
		return nil, err
	}

	if !d.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", d.Timestamp.String())
	}
	return result, err
}

// MarshalJSON implements custom JSON marshaling for Error.
func (e Error) MarshalJSON() ([]byte, error) {
	result, err := sjson.SetBytes(errorJSON, "session_id", e.SessionID.String())
	if err != nil {
		return nil, err
	}

	if e.Err != nil {
		result, err = sjson.SetBytes(result, "error", e.Err.Error())
		if err != nil {
			return nil, err
		}
	}

	if !e.Timestamp.IsZero() {
		result, err = sjson.SetBytes(result, "timestamp", e.Timestamp.String())
	}
	return result, err
}

// UnmarshalStreamEvent decodes a single type-tagged stream event.
func UnmarshalStreamEvent(data []byte) (StreamEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	jv := gjson.ParseBytes(data)
	switch tpe := jv.Get("type").String(); tpe {
	case "start":
		var event Start
		if sid := jv.Get("session_id"); sid.Exists() {
			if err := event.SessionID.UnmarshalText([]byte(sid.String())); err != nil {
				return nil, fmt.Errorf("invalid session_id: %w", err)
			}
		}
		event.Model = jv.Get("model").String()
		if ts := jv.Get("timestamp"); ts.Exists() {
			if err := event.Timestamp.UnmarshalText([]byte(ts.String())); err != nil {
				return nil, fmt.Errorf("invalid timestamp: %w", err)
			}
		}
		return event, nil
	case "text_start":
		return TextStart{Index: int(jv.Get("index").Int())}, nil
	case "text_delta":
		return TextDelta{Index: int(jv.Get("index").Int()), Delta: jv.Get("delta").String()}, nil
	case "text_end":
		return TextEnd{Index: int(jv.Get("index").Int())}, nil
	case "toolcall_start":
		return ToolCallStart{
			Index: int(jv.Get("index").Int()),
			ID:    jv.Get("id").String(),
			Name:  jv.Get("name").String(),
		}, nil
	case "toolcall_delta":
		return ToolCallDelta{
			Index:     int(jv.Get("index").Int()),
			Arguments: jv.Get("arguments").String(),
		}, nil
	case "toolcall_end":
		event := ToolCallEnd{Index: int(jv.Get("index").Int())}
		if call := jv.Get("call"); call.Exists() {
			if err := event.Call.UnmarshalJSON([]byte(call.Raw)); err != nil {
				return nil, fmt.Errorf("invalid call: %w", err)
			}
		}
		return event, nil
	case "done":
		event := Done{Reason: FinishReason(jv.Get("reason").String())}
		if usage := jv.Get("usage"); usage.Exists() {
			if err := json.Unmarshal([]byte(usage.Raw), &event.Usage); err != nil {
				return nil, fmt.Errorf("invalid usage: %w", err)
			}
		}
		if ts := jv.Get("timestamp"); ts.Exists() {
			if err := event.Timestamp.UnmarshalText([]byte(ts.String())); err != nil {
				return nil, fmt.Errorf("invalid timestamp: %w", err)
			}
		}
		return event, nil
	case "error":
		var event Error
		if sid := jv.Get("session_id"); sid.Exists() {
			if err := event.SessionID.UnmarshalText([]byte(sid.String())); err != nil {
				return nil, fmt.Errorf("invalid session_id: %w", err)
			}
		}
		if msg := jv.Get("error"); msg.Exists() {
			event.Err = errors.New(msg.String())
		}
		if ts := jv.Get("timestamp"); ts.Exists() {
			if err := event.Timestamp.UnmarshalText([]byte(ts.String())); err != nil {
				return nil, fmt.Errorf("invalid timestamp: %w", err)
			}
		}
		return event, nil
	default:
		return nil, fmt.Errorf("stream event has an unknown type %q", tpe)
	}
}
