package anthropic

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseResponse decodes a whole (non-streamed) Anthropic /v1/messages
// response body into the UIR.
func ParseResponse(body []byte) (*uir.Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("anthropic", err)
	}

	resp := &uir.Response{
		ID:         wire.ID,
		Model:      wire.Model,
		StopReason: mapStopReason(wire.StopReason),
		Usage:      mapUsage(wire.Usage),
	}

	for _, block := range wire.Content {
		switch block.Type {
		case "text":
			resp.Content = append(resp.Content, uir.Text(block.Text))
		case "tool_use":
			resp.Content = append(resp.Content, uir.ContentPart{
				Type:       uir.PartToolCall,
				ToolCallID: block.ID,
				ToolName:   block.Name,
				Arguments:  block.Input,
			})
		case "thinking":
			resp.Thinking = append(resp.Thinking, uir.ThinkingBlock{
				Text: block.Thinking, Signature: block.Signature,
			})
		case "redacted_thinking":
			resp.Thinking = append(resp.Thinking, uir.ThinkingBlock{Redacted: true, Text: block.Data})
		}
	}

	return resp, nil
}

func mapStopReason(reason string) uir.StopReason {
	switch reason {
	case "end_turn", "stop_sequence":
		return uir.StopEndTurn
	case "max_tokens":
		return uir.StopMaxTokens
	case "tool_use":
		return uir.StopToolUse
	default:
		return uir.StopNull
	}
}

func unmapStopReason(reason uir.StopReason) string {
	switch reason {
	case uir.StopEndTurn:
		return "end_turn"
	case uir.StopMaxTokens:
		return "max_tokens"
	case uir.StopToolUse:
		return "tool_use"
	default:
		return "end_turn"
	}
}

func mapUsage(u wireUsage) *uir.Usage {
	return &uir.Usage{
		InputTokens:  u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens,
		OutputTokens: u.OutputTokens,
		TotalTokens:  u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens + u.OutputTokens,
		CachedTokens: u.CacheReadInputTokens,
	}
}

// TransformResponse encodes a UIR response into an Anthropic-shaped
// client-facing response body.
func TransformResponse(resp *uir.Response) ([]byte, error) {
	wire := wireResponse{
		ID:         resp.ID,
		Type:       "message",
		Role:       "assistant",
		Model:      resp.Model,
		StopReason: unmapStopReason(resp.StopReason),
	}
	if resp.Usage != nil {
		wire.Usage = wireUsage{
			InputTokens:  resp.Usage.InputTokens - resp.Usage.CachedTokens,
			OutputTokens: resp.Usage.OutputTokens,
			CacheReadInputTokens: resp.Usage.CachedTokens,
		}
	}

	for _, thinking := range resp.Thinking {
		if thinking.Redacted {
			wire.Content = append(wire.Content, wireContentBlock{Type: "redacted_thinking", Data: thinking.Text})
		} else {
			wire.Content = append(wire.Content, wireContentBlock{
				Type: "thinking", Thinking: thinking.Text, Signature: thinking.Signature,
			})
		}
	}

	for _, part := range resp.Content {
		switch part.Type {
		case uir.PartText:
			wire.Content = append(wire.Content, wireContentBlock{Type: "text", Text: part.Text})
		case uir.PartToolCall:
			wire.Content = append(wire.Content, wireContentBlock{
				Type: "tool_use", ID: part.ToolCallID, Name: part.ToolName, Input: argumentsAsMap(part.Arguments),
			})
		}
	}

	return json.Marshal(wire)
}
