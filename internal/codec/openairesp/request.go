package openairesp

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/schemanorm"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseRequest decodes an OpenAI Responses API request body into the UIR.
// Detection of this format (vs. Chat Completions/Anthropic/Gemini) happens
// upstream in internal/detector; this package assumes the body is already
// known to be Responses-shaped.
func ParseRequest(body []byte) (*uir.Request, error) {
	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("openai_responses", err)
	}

	req := &uir.Request{
		RequestedModel: wire.Model,
		Stream:         wire.Stream,
		System:         wire.Instructions,
		Config: uir.Config{
			MaxTokens:   wire.MaxOutputTokens,
			Temperature: wire.Temperature,
			TopP:        wire.TopP,
		},
	}

	if wire.Reasoning != nil {
		effort := uir.Effort(wire.Reasoning.Effort)
		req.Thinking = &uir.Thinking{Enabled: wire.Reasoning.Effort != "", Effort: &effort}
	}

	parseInputItems(req, wire.Input)

	for _, t := range wire.Tools {
		if t.Type != "function" {
			continue
		}
		req.Tools = append(req.Tools, uir.Tool{Name: t.Name, Description: t.Description, Parameters: t.Parameters})
	}
	if wire.ToolChoice != nil {
		req.ToolChoice = parseToolChoice(wire.ToolChoice)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// parseInputItems re-groups the Responses API's flattened input array
// (spec §4.1.2: consecutive {type:function_call, call_id, name, arguments}
// items belong with the preceding assistant message) into UIR messages.
// A function_call with no preceding assistant message in the array starts
// a new synthetic assistant message to carry it.
func parseInputItems(req *uir.Request, items []wireInputItem) {
	var lastAssistant *uir.Message

	flushAssistant := func() {
		if lastAssistant != nil {
			req.Messages = append(req.Messages, *lastAssistant)
			lastAssistant = nil
		}
	}

	for _, item := range items {
		switch item.Type {
		case "message":
			flushAssistant()
			role := uir.RoleUser
			if item.Role == "assistant" {
				role = uir.RoleAssistant
			}
			msg := uir.Message{Role: role, Parts: parseContentParts(item.Content)}
			if role == uir.RoleAssistant {
				lastAssistant = &msg
			} else {
				req.Messages = append(req.Messages, msg)
			}

		case "function_call":
			if lastAssistant == nil {
				lastAssistant = &uir.Message{Role: uir.RoleAssistant}
			}
			var args map[string]interface{}
			_ = json.Unmarshal([]byte(item.Arguments), &args)
			lastAssistant.Parts = append(lastAssistant.Parts, uir.ContentPart{
				Type: uir.PartToolCall, ToolCallID: item.CallID, ToolName: item.Name, Arguments: args, RawArguments: item.Arguments,
			})

		case "function_call_output":
			flushAssistant()
			req.Messages = append(req.Messages, uir.Message{
				Role: uir.RoleTool,
				Parts: []uir.ContentPart{{
					Type:            uir.PartToolResult,
					ToolResultForID: item.CallID,
					ResultParts:     parseOutputContent(item.Output),
				}},
			})
		}
	}
	flushAssistant()
}

func parseContentParts(content interface{}) []uir.ContentPart {
	switch v := content.(type) {
	case string:
		return []uir.ContentPart{uir.Text(v)}
	case []interface{}:
		var parts []uir.ContentPart
		for _, raw := range v {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}
			var cp wireContentPart
			if err := json.Unmarshal(b, &cp); err != nil {
				continue
			}
			switch cp.Type {
			case "input_text", "output_text":
				parts = append(parts, uir.Text(cp.Text))
			case "input_image":
				parts = append(parts, uir.ContentPart{Type: uir.PartImage, URL: cp.ImageURL})
			}
		}
		return parts
	}
	return nil
}

func parseOutputContent(output interface{}) []uir.ContentPart {
	switch v := output.(type) {
	case string:
		return []uir.ContentPart{uir.Text(v)}
	default:
		return parseContentParts(output)
	}
}

func parseToolChoice(raw interface{}) *uir.ToolChoice {
	switch v := raw.(type) {
	case string:
		switch v {
		case "auto":
			return &uir.ToolChoice{Type: uir.ToolChoiceAuto}
		case "none":
			return &uir.ToolChoice{Type: uir.ToolChoiceNone}
		case "required":
			return &uir.ToolChoice{Type: uir.ToolChoiceRequired}
		}
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			return &uir.ToolChoice{Type: uir.ToolChoiceTool, ToolName: name}
		}
	}
	return nil
}

// TransformRequest encodes a UIR request into an OpenAI Responses API
// upstream request body.
func TransformRequest(req *uir.Request) ([]byte, error) {
	wire := wireRequest{
		Model:           req.RequestedModel,
		Instructions:    req.System,
		Stream:          req.Stream,
		MaxOutputTokens: req.Config.MaxTokens,
		Temperature:     req.Config.Temperature,
		TopP:            req.Config.TopP,
	}

	if req.Thinking != nil && req.Thinking.Enabled && req.Thinking.Effort != nil {
		wire.Reasoning = &wireReasoning{Effort: string(*req.Thinking.Effort)}
	}

	for _, msg := range req.Messages {
		wire.Input = append(wire.Input, transformMessage(msg)...)
	}

	for _, t := range req.Tools {
		params := schemanorm.Normalize(t.Parameters, schemanorm.Options{})
		wire.Tools = append(wire.Tools, wireTool{Type: "function", Name: t.Name, Description: t.Description, Parameters: params})
	}
	if req.ToolChoice != nil {
		wire.ToolChoice = transformToolChoice(*req.ToolChoice)
	}

	return json.Marshal(wire)
}

// transformMessage expands one UIR message into one-or-more flattened
// input items: a tool_call part becomes a standalone function_call item, a
// tool_result message becomes a function_call_output item, and everything
// else becomes a message item.
func transformMessage(msg uir.Message) []wireInputItem {
	if msg.Role == uir.RoleTool {
		var items []wireInputItem
		for _, p := range msg.Parts {
			if p.Type != uir.PartToolResult {
				continue
			}
			items = append(items, wireInputItem{
				Type: "function_call_output", CallID: p.ToolResultForID, Output: transformResultOutput(p.ResultParts),
			})
		}
		return items
	}

	role := "user"
	if msg.Role == uir.RoleAssistant {
		role = "assistant"
	}

	var items []wireInputItem
	var contentParts []wireContentPart
	for _, p := range msg.Parts {
		switch p.Type {
		case uir.PartText:
			textType := "input_text"
			if role == "assistant" {
				textType = "output_text"
			}
			contentParts = append(contentParts, wireContentPart{Type: textType, Text: p.Text})
		case uir.PartImage:
			contentParts = append(contentParts, wireContentPart{Type: "input_image", ImageURL: p.URL})
		case uir.PartToolCall:
			args := p.RawArguments
			if args == "" {
				b, _ := json.Marshal(argumentsAsMap(p.Arguments))
				args = string(b)
			}
			items = append(items, wireInputItem{Type: "function_call", CallID: p.ToolCallID, Name: p.ToolName, Arguments: args})
		}
	}

	if len(contentParts) > 0 {
		out := make([]interface{}, len(contentParts))
		for i, cp := range contentParts {
			out[i] = cp
		}
		items = append([]wireInputItem{{Type: "message", Role: role, Content: out}}, items...)
	}
	return items
}

func argumentsAsMap(args interface{}) map[string]interface{} {
	if m, ok := args.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func transformResultOutput(parts []uir.ContentPart) string {
	var text string
	for _, p := range parts {
		if p.Type == uir.PartText {
			text += p.Text
		}
	}
	return text
}

func transformToolChoice(tc uir.ToolChoice) interface{} {
	switch tc.Type {
	case uir.ToolChoiceAuto:
		return "auto"
	case uir.ToolChoiceRequired:
		return "required"
	case uir.ToolChoiceNone:
		return "none"
	case uir.ToolChoiceTool:
		return map[string]interface{}{"type": "function", "name": tc.ToolName}
	}
	return nil
}
