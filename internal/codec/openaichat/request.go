package openaichat

import (
	"encoding/json"
	"strings"

	"github.com/digitallysavvy/go-ai/internal/schemanorm"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// reasoningModelPrefixes are the name prefixes spec §4.1.1 calls out as
// "Reasoning" models: max_tokens becomes max_completion_tokens,
// temperature/top_p are dropped, reasoning_effort carries thinking config,
// and any system prompt is emitted with role "developer".
var reasoningModelPrefixes = []string{"o1", "o3", "o4", "gpt-5"}

func isReasoningModel(model string) bool {
	for _, prefix := range reasoningModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// isGLMModel reports whether model is one of the `glm-*` family, whose
// thinking config is a nested {type, clear_thinking} object (spec §4.1.1).
func isGLMModel(model string) bool {
	return strings.HasPrefix(model, "glm-")
}

// ParseRequest decodes an OpenAI Chat Completions request body into the UIR.
func ParseRequest(body []byte) (*uir.Request, error) {
	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("openai_chat", err)
	}

	maxTokens := wire.MaxTokens
	if maxTokens == nil {
		maxTokens = wire.MaxCompletionTokens
	}

	req := &uir.Request{
		RequestedModel: wire.Model,
		Stream:         wire.Stream,
		Config: uir.Config{
			MaxTokens:     maxTokens,
			Temperature:   wire.Temperature,
			TopP:          wire.TopP,
			StopSequences: wire.Stop,
		},
	}

	if wire.ReasoningEffort != nil {
		effort := uir.Effort(*wire.ReasoningEffort)
		req.Thinking = &uir.Thinking{Enabled: true, Effort: &effort}
	}
	if wire.Thinking != nil {
		req.Thinking = &uir.Thinking{Enabled: wire.Thinking.Type == "enabled"}
		if wire.Thinking.ClearThinking != nil && !*wire.Thinking.ClearThinking {
			req.Thinking.PreserveContext = true
		}
	}

	// "system"/"developer" messages both become UIR-Req.system, joined by
	// newlines (spec §4.1.1).
	var systemParts []string
	for _, wm := range wire.Messages {
		if wm.Role == "system" || wm.Role == "developer" {
			if text, ok := wm.Content.(string); ok && text != "" {
				systemParts = append(systemParts, text)
			}
			continue
		}

		msg, toolResult := parseMessage(wm)
		if toolResult != nil {
			req.Messages = append(req.Messages, uir.Message{Role: uir.RoleTool, Parts: []uir.ContentPart{*toolResult}})
			continue
		}
		req.Messages = append(req.Messages, msg)
	}
	req.System = strings.Join(systemParts, "\n")

	for _, t := range wire.Tools {
		req.Tools = append(req.Tools, uir.Tool{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	if wire.ToolChoice != nil {
		req.ToolChoice = parseToolChoice(wire.ToolChoice)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func parseMessage(wm wireMessage) (uir.Message, *uir.ContentPart) {
	if wm.Role == "tool" {
		result := uir.ContentPart{
			Type:            uir.PartToolResult,
			ToolResultForID: wm.ToolCallID,
			ResultParts:     []uir.ContentPart{uir.Text(contentAsText(wm.Content))},
		}
		return uir.Message{}, &result
	}

	role := uir.RoleUser
	if wm.Role == "assistant" {
		role = uir.RoleAssistant
	}
	msg := uir.Message{Role: role}

	switch content := wm.Content.(type) {
	case string:
		if content != "" {
			msg.Parts = append(msg.Parts, uir.Text(content))
		}
	case []interface{}:
		for _, raw := range content {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}
			var part wireContentPart
			if err := json.Unmarshal(b, &part); err != nil {
				continue
			}
			switch part.Type {
			case "text":
				msg.Parts = append(msg.Parts, uir.Text(part.Text))
			case "image_url":
				if part.ImageURL != nil {
					msg.Parts = append(msg.Parts, uir.ContentPart{Type: uir.PartImage, URL: part.ImageURL.URL})
				}
			}
		}
	}

	for _, tc := range wm.ToolCalls {
		var args map[string]interface{}
		json.Unmarshal([]byte(tc.Function.Arguments), &args)
		msg.Parts = append(msg.Parts, uir.ContentPart{
			Type:       uir.PartToolCall,
			ToolCallID: tc.ID,
			ToolName:   tc.Function.Name,
			Arguments:  args,
		})
	}

	return msg, nil
}

func contentAsText(content interface{}) string {
	if s, ok := content.(string); ok {
		return s
	}
	return ""
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
		if fn, ok := v["function"].(map[string]interface{}); ok {
			if name, ok := fn["name"].(string); ok {
				return &uir.ToolChoice{Type: uir.ToolChoiceTool, ToolName: name}
			}
		}
	}
	return nil
}

// TransformRequest encodes a UIR request into an OpenAI Chat Completions
// upstream request body.
func TransformRequest(req *uir.Request) ([]byte, error) {
	model := req.RequestedModel
	wire := wireRequest{
		Model:  model,
		Stream: req.Stream,
		Stop:   req.Config.StopSequences,
	}

	systemRole := "system"
	switch {
	case isReasoningModel(model):
		// max_tokens becomes max_completion_tokens; temperature/top_p are
		// dropped; reasoning_effort carries thinking config; the system
		// prompt (if any) is emitted with role "developer" (spec §4.1.1).
		systemRole = "developer"
		wire.MaxCompletionTokens = req.Config.MaxTokens
		if req.Thinking != nil && req.Thinking.Effort != nil {
			effort := string(*req.Thinking.Effort)
			wire.ReasoningEffort = &effort
		}

	case isGLMModel(model):
		wire.Temperature = req.Config.Temperature
		wire.TopP = req.Config.TopP
		wire.MaxTokens = req.Config.MaxTokens
		if req.Thinking != nil {
			thinkingType := "disabled"
			if req.Thinking.Enabled {
				thinkingType = "enabled"
			}
			glm := &wireGLMThinking{Type: thinkingType}
			if req.Thinking.PreserveContext {
				clear := false
				glm.ClearThinking = &clear
			}
			wire.Thinking = glm
		}

	default:
		wire.Temperature = req.Config.Temperature
		wire.TopP = req.Config.TopP
		wire.MaxTokens = req.Config.MaxTokens
	}

	if req.System != "" {
		wire.Messages = append(wire.Messages, wireMessage{Role: systemRole, Content: req.System})
	}

	for _, msg := range req.Messages {
		wire.Messages = append(wire.Messages, transformMessage(msg)...)
	}

	for _, t := range req.Tools {
		wire.Tools = append(wire.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  schemanorm.Normalize(t.Parameters, schemanorm.Options{}),
			},
		})
	}
	if req.ToolChoice != nil {
		wire.ToolChoice = transformToolChoice(*req.ToolChoice)
	}

	return json.Marshal(wire)
}

// transformMessage may expand into more than one wire message: a
// tool-result part becomes its own standalone {role: tool} message, since
// Chat Completions has no analogue of Anthropic's multi-part user turn
// carrying both text and tool results together.
func transformMessage(msg uir.Message) []wireMessage {
	if msg.Role == uir.RoleTool {
		var out []wireMessage
		for _, p := range msg.Parts {
			out = append(out, wireMessage{
				Role:       "tool",
				ToolCallID: p.ToolResultForID,
				Content:    resultPartsAsText(p.ResultParts),
			})
		}
		return out
	}

	role := "user"
	if msg.Role == uir.RoleAssistant {
		role = "assistant"
	}
	wm := wireMessage{Role: role}

	var textParts []wireContentPart
	for _, part := range msg.Parts {
		switch part.Type {
		case uir.PartText:
			textParts = append(textParts, wireContentPart{Type: "text", Text: part.Text})
		case uir.PartImage:
			url := part.URL
			if url == "" {
				url = string(part.Data)
			}
			textParts = append(textParts, wireContentPart{Type: "image_url", ImageURL: &wireImageURL{URL: url}})
		case uir.PartToolCall:
			args, _ := json.Marshal(argumentsOrEmpty(part.Arguments))
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   part.ToolCallID,
				Type: "function",
				Function: wireFunctionCall{Name: part.ToolName, Arguments: string(args)},
			})
		}
	}

	if len(textParts) == 1 && textParts[0].Type == "text" {
		wm.Content = textParts[0].Text
	} else if len(textParts) > 0 {
		wm.Content = textParts
	}

	return []wireMessage{wm}
}

func argumentsOrEmpty(args interface{}) interface{} {
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func resultPartsAsText(parts []uir.ContentPart) string {
	var out string
	for _, p := range parts {
		if p.Type == uir.PartText {
			out += p.Text
		}
	}
	return out
}

func transformToolChoice(tc uir.ToolChoice) interface{} {
	switch tc.Type {
	case uir.ToolChoiceAuto:
		return "auto"
	case uir.ToolChoiceNone:
		return "none"
	case uir.ToolChoiceRequired:
		return "required"
	case uir.ToolChoiceTool:
		return map[string]interface{}{
			"type":     "function",
			"function": map[string]interface{}{"name": tc.ToolName},
		}
	}
	return nil
}
