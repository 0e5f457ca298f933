package openairesp

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseResponse decodes a whole (non-streamed) OpenAI Responses API
// response body into the UIR.
func ParseResponse(body []byte) (*uir.Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("openai_responses", err)
	}

	resp := &uir.Response{ID: wire.ID, Model: wire.Model, Usage: mapUsage(wire.Usage)}

	hasFunctionCall := false
	for _, item := range wire.Output {
		switch item.Type {
		case "message":
			for _, cp := range item.Content {
				if cp.Type == "output_text" {
					resp.Content = append(resp.Content, uir.Text(cp.Text))
				}
			}
		case "function_call":
			hasFunctionCall = true
			var args map[string]interface{}
			_ = json.Unmarshal([]byte(item.Arguments), &args)
			resp.Content = append(resp.Content, uir.ContentPart{
				Type: uir.PartToolCall, ToolCallID: item.CallID, ToolName: item.Name, Arguments: args, RawArguments: item.Arguments,
			})
		case "reasoning":
			for _, s := range item.Summary {
				resp.Thinking = append(resp.Thinking, uir.ThinkingBlock{Text: s.Text})
			}
			if item.EncryptedContent != "" {
				resp.Thinking = append(resp.Thinking, uir.ThinkingBlock{Redacted: true, Signature: item.EncryptedContent})
			}
		}
	}

	switch {
	case hasFunctionCall:
		resp.StopReason = uir.StopToolUse
	case wire.Status == "incomplete":
		resp.StopReason = uir.StopMaxTokens
	default:
		resp.StopReason = uir.StopEndTurn
	}

	return resp, nil
}

func mapUsage(u *wireUsage) *uir.Usage {
	if u == nil {
		return nil
	}
	usage := &uir.Usage{
		InputTokens:  int64(u.InputTokens),
		OutputTokens: int64(u.OutputTokens),
		TotalTokens:  int64(u.TotalTokens),
	}
	if u.InputTokensDetails != nil {
		usage.CachedTokens = int64(u.InputTokensDetails.CachedTokens)
	}
	if u.OutputTokensDetails != nil {
		usage.ThinkingTokens = int64(u.OutputTokensDetails.ReasoningTokens)
	}
	return usage
}

// TransformResponse encodes a UIR response into an OpenAI Responses
// API-shaped client-facing response body.
func TransformResponse(resp *uir.Response) ([]byte, error) {
	wire := wireResponse{ID: resp.ID, Object: "response", Model: resp.Model, Status: "completed"}
	if resp.StopReason == uir.StopMaxTokens {
		wire.Status = "incomplete"
	}

	for _, thinking := range resp.Thinking {
		item := wireOutputItem{Type: "reasoning"}
		if thinking.Redacted {
			item.EncryptedContent = thinking.Signature
		} else {
			item.Summary = []wireContentPart{{Type: "summary_text", Text: thinking.Text}}
		}
		wire.Output = append(wire.Output, item)
	}

	var textParts []wireContentPart
	for _, part := range resp.Content {
		switch part.Type {
		case uir.PartText:
			textParts = append(textParts, wireContentPart{Type: "output_text", Text: part.Text})
		case uir.PartToolCall:
			args := part.RawArguments
			if args == "" {
				b, _ := json.Marshal(argumentsAsMap(part.Arguments))
				args = string(b)
			}
			wire.Output = append(wire.Output, wireOutputItem{
				Type: "function_call", CallID: part.ToolCallID, Name: part.ToolName, Arguments: args,
			})
		}
	}
	if len(textParts) > 0 {
		wire.Output = append([]wireOutputItem{{Type: "message", Role: "assistant", Content: textParts}}, wire.Output...)
	}

	if resp.Usage != nil {
		wire.Usage = &wireUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		}
	}

	return json.Marshal(wire)
}
