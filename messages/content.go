package messages

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	textBlockJSON     = []byte(`{"type":"text"}`)
	toolCallBlockJSON = []byte(`{"type":"toolCall"}`)
)

// ContentBlock is one unit of assistant output: plain text or a request to
// invoke a tool. The set of variants is closed; consumers switch
// exhaustively over the two concrete types.
type ContentBlock interface {
	contentBlock()
}

// TextBlock carries plain text produced by the model.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) contentBlock() {}

// Text builds a TextBlock.
func Text(text string) TextBlock {
	return TextBlock{Text: text}
}

// MarshalJSON implements custom JSON marshaling for TextBlock.
func (t TextBlock) MarshalJSON() ([]byte, error) {
	return sjson.SetBytes(textBlockJSON, "text", t.Text)
}

// UnmarshalJSON implements custom JSON unmarshaling for TextBlock.
func (t *TextBlock) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	tpe := gjson.GetBytes(data, "type")
	if !tpe.Exists() || tpe.String() != "text" {
		return fmt.Errorf("missing or invalid type, expected 'text'")
	}

	t.Text = gjson.GetBytes(data, "text").String()
	return nil
}

// ToolCallBlock carries a tool invocation requested by the model.
// Arguments hold the decoded JSON object the model supplied for the call.
type ToolCallBlock struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (ToolCallBlock) contentBlock() {}

// MarshalJSON implements custom JSON marshaling for ToolCallBlock.
func (t ToolCallBlock) MarshalJSON() ([]byte, error) {
	result := toolCallBlockJSON

	var err error
	result, err = sjson.SetBytes(result, "id", t.ID)
	if err != nil {
		return nil, err
	}

	result, err = sjson.SetBytes(result, "name", t.Name)
	if err != nil {
		return nil, err
	}

	args, err := json.Marshal(t.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	return sjson.SetRawBytes(result, "arguments", args)
}

// UnmarshalJSON implements custom JSON unmarshaling for ToolCallBlock.
func (t *ToolCallBlock) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid json: %s", data)
	}

	tpe := gjson.GetBytes(data, "type")
	if !tpe.Exists() || tpe.String() != "toolCall" {
		return fmt.Errorf("missing or invalid type, expected 'toolCall'")
	}

	t.ID = gjson.GetBytes(data, "id").String()
	t.Name = gjson.GetBytes(data, "name").String()

	if args := gjson.GetBytes(data, "arguments"); args.Exists() {
		if err := json.Unmarshal([]byte(args.Raw), &t.Arguments); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	}
	return nil
}

// UnmarshalContentBlock decodes a single tagged content block.
func UnmarshalContentBlock(data []byte) (ContentBlock, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json: %s", data)
	}

	switch tpe := gjson.GetBytes(data, "type").String(); tpe {
	case "text":
		var block TextBlock
		if err := block.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return block, nil
	case "toolCall":
		var block ToolCallBlock
		if err := block.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return block, nil
	default:
		return nil, fmt.Errorf("content block has an unknown type %q", tpe)
	}
}

func unmarshalContentBlocks(blocks gjson.Result) ([]ContentBlock, error) {
	if !blocks.IsArray() {
		return nil, fmt.Errorf("expected an array of content blocks")
	}

	values := blocks.Array()
	result := make([]ContentBlock, len(values))
	for i, value := range values {
		block, err := UnmarshalContentBlock([]byte(value.Raw))
		if err != nil {
			return nil, fmt.Errorf("invalid content block at %d: %w", i, err)
		}
		result[i] = block
	}
	return result, nil
}

// JoinText concatenates the text blocks in a content sequence with
// newlines, skipping tool calls.
func JoinText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		if text, ok := block.(TextBlock); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
