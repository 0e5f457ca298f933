package anthropic

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/schemanorm"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

const defaultMaxTokens = 4096

// ParseRequest decodes an Anthropic /v1/messages request body into the UIR.
func ParseRequest(body []byte) (*uir.Request, error) {
	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("anthropic", err)
	}

	req := &uir.Request{
		RequestedModel: wire.Model,
		Stream:         wire.Stream,
		Config: uir.Config{
			TopP:          wire.TopP,
			TopK:          wire.TopK,
			Temperature:   wire.Temperature,
			StopSequences: wire.StopSequences,
		},
	}
	if wire.MaxTokens > 0 {
		maxTokens := wire.MaxTokens
		req.Config.MaxTokens = &maxTokens
	}

	switch sys := wire.System.(type) {
	case string:
		req.System = sys
	case []interface{}:
		for _, raw := range sys {
			b, err := json.Marshal(raw)
			if err != nil {
				continue
			}
			var block wireContentBlock
			if err := json.Unmarshal(b, &block); err != nil {
				continue
			}
			req.SystemBlocks = append(req.SystemBlocks, uir.SystemBlock{
				Text:         block.Text,
				CacheControl: fromWireCacheControl(block.CacheControl),
			})
		}
	}

	for _, wm := range wire.Messages {
		msg, err := parseMessage(wm)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}

	for _, t := range wire.Tools {
		req.Tools = append(req.Tools, uir.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	if wire.ToolChoice != nil {
		req.ToolChoice = parseToolChoice(wire.ToolChoice)
	}

	if wire.Thinking != nil {
		req.Thinking = &uir.Thinking{
			Enabled: wire.Thinking.Type == "enabled",
			Budget:  wire.Thinking.BudgetTokens,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func parseMessage(wm wireMessage) (uir.Message, error) {
	role := uir.RoleUser
	switch wm.Role {
	case "assistant":
		role = uir.RoleAssistant
	case "user":
		role = uir.RoleUser
	}

	msg := uir.Message{Role: role}
	var toolResultParts []uir.ContentPart

	for _, block := range wm.Content {
		switch block.Type {
		case "text":
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:         uir.PartText,
				Text:         block.Text,
				CacheControl: fromWireCacheControl(block.CacheControl),
			})
		case "image":
			part := uir.ContentPart{Type: uir.PartImage}
			if block.Source != nil {
				part.MimeType = block.Source.MediaType
				if block.Source.Type == "url" {
					part.URL = block.Source.URL
				} else {
					part.Data = []byte(block.Source.Data)
				}
			}
			msg.Parts = append(msg.Parts, part)
		case "tool_use":
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:       uir.PartToolCall,
				ToolCallID: block.ID,
				ToolName:   block.Name,
				Arguments:  block.Input,
			})
		case "tool_result":
			role = uir.RoleTool
			resultPart := uir.ContentPart{
				Type:            uir.PartToolResult,
				ToolResultForID: block.ToolUseID,
				IsError:         block.IsError,
			}
			resultPart.ResultParts = parseToolResultContent(block.Content)
			toolResultParts = append(toolResultParts, resultPart)
		case "thinking":
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:      uir.PartThinking,
				Text:      block.Thinking,
				Signature: block.Signature,
			})
		case "redacted_thinking":
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:     uir.PartThinking,
				Redacted: true,
				Text:     block.Data,
			})
		}
	}

	if len(toolResultParts) > 0 {
		msg.Role = uir.RoleTool
		msg.Parts = toolResultParts
	}
	return msg, nil
}

func parseToolResultContent(content interface{}) []uir.ContentPart {
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
			var block wireContentBlock
			if err := json.Unmarshal(b, &block); err != nil {
				continue
			}
			if block.Type == "text" {
				parts = append(parts, uir.Text(block.Text))
			}
		}
		return parts
	}
	return nil
}

func parseToolChoice(raw interface{}) *uir.ToolChoice {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil
	}
	t, _ := m["type"].(string)
	switch t {
	case "auto":
		return &uir.ToolChoice{Type: uir.ToolChoiceAuto}
	case "any":
		return &uir.ToolChoice{Type: uir.ToolChoiceRequired}
	case "none":
		return &uir.ToolChoice{Type: uir.ToolChoiceNone}
	case "tool":
		name, _ := m["name"].(string)
		return &uir.ToolChoice{Type: uir.ToolChoiceTool, ToolName: name}
	}
	return nil
}

func fromWireCacheControl(cc *wireCacheControl) *uir.CacheControl {
	if cc == nil {
		return nil
	}
	return &uir.CacheControl{Type: cc.Type, TTL: cc.TTL}
}

func toWireCacheControl(cc *uir.CacheControl) *wireCacheControl {
	if cc == nil {
		return nil
	}
	return &wireCacheControl{Type: cc.Type, TTL: cc.TTL}
}

// TransformRequest encodes a UIR request into an Anthropic /v1/messages
// upstream request body.
func TransformRequest(req *uir.Request) ([]byte, error) {
	maxTokens := defaultMaxTokens
	if req.Config.MaxTokens != nil {
		maxTokens = *req.Config.MaxTokens
	}

	wire := wireRequest{
		Model:         req.RequestedModel,
		MaxTokens:     maxTokens,
		Stream:        req.Stream,
		StopSequences: req.Config.StopSequences,
	}

	isThinking := req.Thinking != nil && req.Thinking.Enabled
	if !isThinking {
		wire.Temperature = req.Config.Temperature
		wire.TopK = req.Config.TopK
		if req.Config.TopP != nil && req.Config.Temperature == nil {
			wire.TopP = req.Config.TopP
		}
	}

	if len(req.SystemBlocks) > 0 {
		blocks := make([]wireContentBlock, 0, len(req.SystemBlocks))
		for _, sb := range req.SystemBlocks {
			blocks = append(blocks, wireContentBlock{
				Type:         "text",
				Text:         sb.Text,
				CacheControl: toWireCacheControl(sb.CacheControl),
			})
		}
		wire.System = blocks
	} else if req.System != "" {
		wire.System = req.System
	}

	for _, msg := range req.Messages {
		wire.Messages = append(wire.Messages, transformMessage(msg))
	}

	for _, t := range req.Tools {
		params := schemanorm.Normalize(t.Parameters, schemanorm.Options{})
		wire.Tools = append(wire.Tools, wireTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: params,
		})
	}
	if req.ToolChoice != nil {
		wire.ToolChoice = transformToolChoice(*req.ToolChoice)
	}

	if req.Thinking != nil && req.Thinking.Enabled {
		thinkingType := "enabled"
		wire.Thinking = &wireThinking{Type: thinkingType, BudgetTokens: req.Thinking.Budget}
	}

	return json.Marshal(wire)
}

func transformMessage(msg uir.Message) wireMessage {
	role := "user"
	if msg.Role == uir.RoleAssistant {
		role = "assistant"
	}

	wm := wireMessage{Role: role}
	for _, part := range msg.Parts {
		switch part.Type {
		case uir.PartText:
			wm.Content = append(wm.Content, wireContentBlock{
				Type:         "text",
				Text:         part.Text,
				CacheControl: toWireCacheControl(part.CacheControl),
			})
		case uir.PartImage:
			block := wireContentBlock{Type: "image"}
			if part.URL != "" {
				block.Source = &wireImageSource{Type: "url", URL: part.URL, MediaType: part.MimeType}
			} else {
				block.Source = &wireImageSource{Type: "base64", Data: string(part.Data), MediaType: part.MimeType}
			}
			wm.Content = append(wm.Content, block)
		case uir.PartToolCall:
			wm.Content = append(wm.Content, wireContentBlock{
				Type:  "tool_use",
				ID:    part.ToolCallID,
				Name:  part.ToolName,
				Input: argumentsAsMap(part.Arguments),
			})
		case uir.PartToolResult:
			wm.Role = "user"
			wm.Content = append(wm.Content, wireContentBlock{
				Type:      "tool_result",
				ToolUseID: part.ToolResultForID,
				IsError:   part.IsError,
				Content:   transformResultParts(part.ResultParts),
			})
		case uir.PartThinking:
			if part.Redacted {
				wm.Content = append(wm.Content, wireContentBlock{Type: "redacted_thinking", Data: part.Text})
			} else {
				wm.Content = append(wm.Content, wireContentBlock{
					Type: "thinking", Thinking: part.Text, Signature: part.Signature,
				})
			}
		}
	}
	return wm
}

func argumentsAsMap(args interface{}) map[string]interface{} {
	if m, ok := args.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func transformResultParts(parts []uir.ContentPart) []wireContentBlock {
	blocks := make([]wireContentBlock, 0, len(parts))
	for _, p := range parts {
		if p.Type == uir.PartText {
			blocks = append(blocks, wireContentBlock{Type: "text", Text: p.Text})
		}
	}
	return blocks
}

func transformToolChoice(tc uir.ToolChoice) map[string]interface{} {
	switch tc.Type {
	case uir.ToolChoiceAuto:
		return map[string]interface{}{"type": "auto"}
	case uir.ToolChoiceRequired:
		return map[string]interface{}{"type": "any"}
	case uir.ToolChoiceNone:
		return map[string]interface{}{"type": "none"}
	case uir.ToolChoiceTool:
		return map[string]interface{}{"type": "tool", "name": tc.ToolName}
	}
	return nil
}
