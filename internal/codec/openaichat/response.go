package openaichat

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseResponse decodes a whole (non-streamed) OpenAI Chat Completions
// response body into the UIR.
func ParseResponse(body []byte) (*uir.Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("openai_chat", err)
	}

	resp := &uir.Response{ID: wire.ID, Model: wire.Model, Usage: mapUsage(wire.Usage)}

	if len(wire.Choices) > 0 {
		choice := wire.Choices[0]
		if text, ok := choice.Message.Content.(string); ok && text != "" {
			resp.Content = append(resp.Content, uir.Text(text))
		}
		for _, tc := range choice.Message.ToolCalls {
			var args map[string]interface{}
			json.Unmarshal([]byte(tc.Function.Arguments), &args)
			resp.Content = append(resp.Content, uir.ContentPart{
				Type: uir.PartToolCall, ToolCallID: tc.ID, ToolName: tc.Function.Name, Arguments: args,
			})
		}
		resp.StopReason = mapFinishReason(choice.FinishReason)
	}

	return resp, nil
}

func mapFinishReason(reason string) uir.StopReason {
	switch reason {
	case "stop":
		return uir.StopEndTurn
	case "length":
		return uir.StopMaxTokens
	case "tool_calls", "function_call":
		return uir.StopToolUse
	case "content_filter":
		return uir.StopContentFilter
	default:
		return uir.StopNull
	}
}

func unmapFinishReason(reason uir.StopReason) string {
	switch reason {
	case uir.StopEndTurn:
		return "stop"
	case uir.StopMaxTokens:
		return "length"
	case uir.StopToolUse:
		return "tool_calls"
	case uir.StopContentFilter:
		return "content_filter"
	default:
		return "stop"
	}
}

func mapUsage(u wireUsage) *uir.Usage {
	usage := &uir.Usage{
		InputTokens:  int64(u.PromptTokens),
		OutputTokens: int64(u.CompletionTokens),
		TotalTokens:  int64(u.TotalTokens),
	}
	if u.PromptTokensDetails != nil {
		usage.CachedTokens = int64(u.PromptTokensDetails.CachedTokens)
	}
	if u.CompletionTokensDetails != nil {
		usage.ThinkingTokens = int64(u.CompletionTokensDetails.ReasoningTokens)
	}
	return usage
}

// TransformResponse encodes a UIR response into an OpenAI-shaped
// client-facing response body.
func TransformResponse(resp *uir.Response) ([]byte, error) {
	wire := wireResponse{ID: resp.ID, Object: "chat.completion", Model: resp.Model}

	choice := wireChoice{Message: wireMessage{Role: "assistant"}, FinishReason: unmapFinishReason(resp.StopReason)}
	var text string
	for _, part := range resp.Content {
		switch part.Type {
		case uir.PartText:
			text += part.Text
		case uir.PartToolCall:
			args, _ := json.Marshal(argumentsOrEmpty(part.Arguments))
			choice.Message.ToolCalls = append(choice.Message.ToolCalls, wireToolCall{
				ID: part.ToolCallID, Type: "function",
				Function: wireFunctionCall{Name: part.ToolName, Arguments: string(args)},
			})
		}
	}
	choice.Message.Content = text
	wire.Choices = []wireChoice{choice}

	if resp.Usage != nil {
		wire.Usage = wireUsage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		}
	}

	return json.Marshal(wire)
}
