package gemini

import (
	"encoding/json"

	"github.com/digitallysavvy/go-ai/internal/schemanorm"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// ParseRequest decodes a Gemini generateContent request body into the UIR.
func ParseRequest(body []byte) (*uir.Request, error) {
	var wire wireRequest
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, uir.SchemaMismatch("gemini", err)
	}

	req := &uir.Request{}

	if wire.SystemInstruction != nil {
		for _, p := range wire.SystemInstruction.Parts {
			if p.Text != "" {
				req.System += p.Text
			}
		}
	}

	for _, c := range wire.Contents {
		msg, err := parseContent(c)
		if err != nil {
			return nil, err
		}
		req.Messages = append(req.Messages, msg)
	}

	for _, t := range wire.Tools {
		for _, fd := range t.FunctionDeclarations {
			req.Tools = append(req.Tools, uir.Tool{
				Name:        fd.Name,
				Description: fd.Description,
				Parameters:  fd.Parameters,
			})
		}
	}
	if wire.ToolConfig != nil && wire.ToolConfig.FunctionCallingConfig != nil {
		req.ToolChoice = parseToolConfig(wire.ToolConfig.FunctionCallingConfig)
	}

	if wire.GenerationConfig != nil {
		gc := wire.GenerationConfig
		req.Config = uir.Config{
			Temperature:   gc.Temperature,
			TopP:          gc.TopP,
			TopK:          gc.TopK,
			MaxTokens:     gc.MaxOutputTokens,
			StopSequences: gc.StopSequences,
		}
		if gc.ThinkingConfig != nil {
			req.Thinking = &uir.Thinking{
				Enabled:         true,
				Budget:          gc.ThinkingConfig.ThinkingBudget,
				IncludeThoughts: gc.ThinkingConfig.IncludeThoughts,
			}
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func parseContent(c wireContent) (uir.Message, error) {
	role := uir.RoleUser
	if c.Role == "model" {
		role = uir.RoleAssistant
	}

	msg := uir.Message{Role: role}
	var toolResultParts []uir.ContentPart

	for _, p := range c.Parts {
		switch {
		case p.FunctionResponse != nil:
			toolResultParts = append(toolResultParts, uir.ContentPart{
				Type:            uir.PartToolResult,
				ToolResultForID: functionResultID(p.FunctionResponse),
				ResultParts:     parseFunctionResponseContent(p.FunctionResponse.Response),
			})
		case p.FunctionCall != nil:
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:       uir.PartToolCall,
				ToolCallID: functionCallID(p.FunctionCall),
				ToolName:   p.FunctionCall.Name,
				Arguments:  p.FunctionCall.Args,
			})
		case p.Thought:
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type:      uir.PartThinking,
				Text:      p.Text,
				Signature: p.ThoughtSignature,
			})
		case p.InlineData != nil:
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type: uir.PartImage, MimeType: p.InlineData.MimeType, Data: []byte(p.InlineData.Data),
			})
		case p.FileData != nil:
			msg.Parts = append(msg.Parts, uir.ContentPart{
				Type: uir.PartImage, MimeType: p.FileData.MimeType, URL: p.FileData.FileURI,
			})
		default:
			msg.Parts = append(msg.Parts, uir.Text(p.Text))
		}
	}

	if len(toolResultParts) > 0 {
		msg.Role = uir.RoleTool
		msg.Parts = toolResultParts
	}
	return msg, nil
}

// functionCallID and functionResultID fall back to the function name when
// Gemini omits the optional "id" field, since the UIR requires a stable
// toolCallId for its tool_result cross-reference invariant and Gemini's own
// parallel-call pairing is positional rather than id-based in that case.
func functionCallID(fc *wireFunctionCall) string {
	if fc.ID != "" {
		return fc.ID
	}
	return fc.Name
}

func functionResultID(fr *wireFunctionResponse) string {
	if fr.ID != "" {
		return fr.ID
	}
	return fr.Name
}

func parseFunctionResponseContent(resp map[string]interface{}) []uir.ContentPart {
	b, err := json.Marshal(resp)
	if err != nil {
		return nil
	}
	return []uir.ContentPart{uir.Text(string(b))}
}

func parseToolConfig(fc *wireFunctionCallingConfig) *uir.ToolChoice {
	switch fc.Mode {
	case "AUTO":
		return &uir.ToolChoice{Type: uir.ToolChoiceAuto}
	case "ANY":
		if len(fc.AllowedFunctionNames) == 1 {
			return &uir.ToolChoice{Type: uir.ToolChoiceTool, ToolName: fc.AllowedFunctionNames[0]}
		}
		return &uir.ToolChoice{Type: uir.ToolChoiceRequired}
	case "NONE":
		return &uir.ToolChoice{Type: uir.ToolChoiceNone}
	}
	return nil
}

// TransformRequest encodes a UIR request into a Gemini generateContent
// upstream request body.
func TransformRequest(req *uir.Request) ([]byte, error) {
	wire := wireRequest{}

	if req.System != "" {
		wire.SystemInstruction = &wireContent{Parts: []wirePart{{Text: req.System}}}
	} else if len(req.SystemBlocks) > 0 {
		var text string
		for _, sb := range req.SystemBlocks {
			text += sb.Text
		}
		wire.SystemInstruction = &wireContent{Parts: []wirePart{{Text: text}}}
	}

	for _, msg := range req.Messages {
		wire.Contents = append(wire.Contents, transformContent(msg))
	}

	if len(req.Tools) > 0 {
		decls := make([]wireFunctionDecl, 0, len(req.Tools))
		for _, t := range req.Tools {
			params := schemanorm.Normalize(t.Parameters, schemanorm.Options{GeminiAnyOf: true})
			decls = append(decls, wireFunctionDecl{Name: t.Name, Description: t.Description, Parameters: params})
		}
		wire.Tools = []wireTool{{FunctionDeclarations: decls}}
	}
	if req.ToolChoice != nil {
		wire.ToolConfig = &wireToolConfig{FunctionCallingConfig: transformToolChoice(*req.ToolChoice)}
	}

	gc := &wireGenConfig{
		Temperature:     req.Config.Temperature,
		TopP:            req.Config.TopP,
		TopK:            req.Config.TopK,
		MaxOutputTokens: req.Config.MaxTokens,
		StopSequences:   req.Config.StopSequences,
	}
	if req.Thinking != nil && req.Thinking.Enabled {
		gc.ThinkingConfig = &wireThinkingConfig{
			IncludeThoughts: req.Thinking.IncludeThoughts,
			ThinkingBudget:  req.Thinking.Budget,
		}
	}
	wire.GenerationConfig = gc

	return json.Marshal(wire)
}

func transformContent(msg uir.Message) wireContent {
	role := "user"
	if msg.Role == uir.RoleAssistant {
		role = "model"
	}

	wc := wireContent{Role: role}
	for _, part := range msg.Parts {
		switch part.Type {
		case uir.PartText:
			wc.Parts = append(wc.Parts, wirePart{Text: part.Text})
		case uir.PartImage:
			if part.URL != "" {
				wc.Parts = append(wc.Parts, wirePart{FileData: &wireFile{MimeType: part.MimeType, FileURI: part.URL}})
			} else {
				wc.Parts = append(wc.Parts, wirePart{InlineData: &wireBlob{MimeType: part.MimeType, Data: string(part.Data)}})
			}
		case uir.PartToolCall:
			wc.Parts = append(wc.Parts, wirePart{
				FunctionCall: &wireFunctionCall{ID: part.ToolCallID, Name: part.ToolName, Args: argumentsAsMap(part.Arguments)},
			})
		case uir.PartToolResult:
			wc.Role = "user"
			wc.Parts = append(wc.Parts, wirePart{
				FunctionResponse: &wireFunctionResponse{
					ID: part.ToolResultForID, Name: part.ToolResultForID, Response: resultPartsAsMap(part.ResultParts),
				},
			})
		case uir.PartThinking:
			wc.Parts = append(wc.Parts, wirePart{Text: part.Text, Thought: true, ThoughtSignature: part.Signature})
		}
	}
	return wc
}

func argumentsAsMap(args interface{}) map[string]interface{} {
	if m, ok := args.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

// resultPartsAsMap returns the tool-result text as an object, since
// Gemini's functionResponse.response field is a structured object, not a
// bare string, unlike every other vendor's tool-result content: text that
// parses as a JSON object is returned as that object, anything else is
// wrapped as {"result": "..."}.
func resultPartsAsMap(parts []uir.ContentPart) map[string]interface{} {
	var text string
	for _, p := range parts {
		if p.Type == uir.PartText {
			text += p.Text
		}
	}
	var parsed map[string]interface{}
	if json.Unmarshal([]byte(text), &parsed) == nil && parsed != nil {
		return parsed
	}
	return map[string]interface{}{"result": text}
}

func transformToolChoice(tc uir.ToolChoice) *wireFunctionCallingConfig {
	switch tc.Type {
	case uir.ToolChoiceAuto:
		return &wireFunctionCallingConfig{Mode: "AUTO"}
	case uir.ToolChoiceRequired:
		return &wireFunctionCallingConfig{Mode: "ANY"}
	case uir.ToolChoiceNone:
		return &wireFunctionCallingConfig{Mode: "NONE"}
	case uir.ToolChoiceTool:
		return &wireFunctionCallingConfig{Mode: "ANY", AllowedFunctionNames: []string{tc.ToolName}}
	}
	return nil
}
