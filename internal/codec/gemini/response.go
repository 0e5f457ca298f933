package gemini

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseResponse decodes a whole (non-streamed) Gemini generateContent
// response body into the UIR.
func ParseResponse(body []byte) (*uir.Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("gemini", err)
	}

	resp := &uir.Response{Model: wire.ModelVersion, Usage: mapUsage(wire.UsageMetadata)}

	if len(wire.Candidates) > 0 {
		cand := wire.Candidates[0]
		resp.StopReason = mapFinishReason(cand.FinishReason)

		hasFunctionCall := false
		for _, p := range cand.Content.Parts {
			switch {
			case p.FunctionCall != nil:
				hasFunctionCall = true
				resp.Content = append(resp.Content, uir.ContentPart{
					Type: uir.PartToolCall, ToolCallID: functionCallID(p.FunctionCall),
					ToolName: p.FunctionCall.Name, Arguments: p.FunctionCall.Args,
				})
			case p.Thought:
				resp.Thinking = append(resp.Thinking, uir.ThinkingBlock{Text: p.Text, Signature: p.ThoughtSignature})
			default:
				if p.Text != "" {
					resp.Content = append(resp.Content, uir.Text(p.Text))
				}
			}
		}
		// A functionCall in the reply forces tool_use regardless of the
		// vendor's own finishReason (spec §4.1.4).
		if hasFunctionCall {
			resp.StopReason = uir.StopToolUse
		}
	}

	return resp, nil
}

// mapFinishReason applies the spec §4.1.4 finishReason table.
func mapFinishReason(reason string) uir.StopReason {
	switch reason {
	case "STOP":
		return uir.StopEndTurn
	case "MAX_TOKENS":
		return uir.StopMaxTokens
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		return uir.StopContentFilter
	default:
		return uir.StopNull
	}
}

func unmapFinishReason(reason uir.StopReason) string {
	switch reason {
	case uir.StopEndTurn:
		return "STOP"
	case uir.StopMaxTokens:
		return "MAX_TOKENS"
	case uir.StopContentFilter:
		return "SAFETY"
	case uir.StopToolUse:
		return "STOP"
	default:
		return "STOP"
	}
}

func mapUsage(u *wireUsage) *uir.Usage {
	if u == nil {
		return nil
	}
	return &uir.Usage{
		InputTokens:    u.PromptTokenCount,
		OutputTokens:   u.CandidatesTokenCount,
		TotalTokens:    u.TotalTokenCount,
		ThinkingTokens: u.ThoughtsTokenCount,
		CachedTokens:   u.CachedContentTokenCount,
	}
}

// TransformResponse encodes a UIR response into a Gemini-shaped
// client-facing response body.
func TransformResponse(resp *uir.Response) ([]byte, error) {
	wire := wireResponse{ModelVersion: resp.Model}

	cand := wireCandidate{Content: wireContent{Role: "model"}, FinishReason: unmapFinishReason(resp.StopReason)}
	for _, thinking := range resp.Thinking {
		cand.Content.Parts = append(cand.Content.Parts, wirePart{
			Text: thinking.Text, Thought: true, ThoughtSignature: thinking.Signature,
		})
	}
	for _, part := range resp.Content {
		switch part.Type {
		case uir.PartText:
			cand.Content.Parts = append(cand.Content.Parts, wirePart{Text: part.Text})
		case uir.PartToolCall:
			cand.Content.Parts = append(cand.Content.Parts, wirePart{
				FunctionCall: &wireFunctionCall{ID: part.ToolCallID, Name: part.ToolName, Args: argumentsAsMap(part.Arguments)},
			})
		}
	}
	wire.Candidates = []wireCandidate{cand}

	if resp.Usage != nil {
		wire.UsageMetadata = &wireUsage{
			PromptTokenCount:        resp.Usage.InputTokens,
			CandidatesTokenCount:    resp.Usage.OutputTokens,
			TotalTokenCount:         resp.Usage.TotalTokens,
			ThoughtsTokenCount:      resp.Usage.ThinkingTokens,
			CachedContentTokenCount: resp.Usage.CachedTokens,
		}
	}

	return json.Marshal(wire)
}
