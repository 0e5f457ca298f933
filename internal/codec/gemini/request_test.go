package gemini

import (
	"encoding/json"
	"testing"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

func TestParseRequest_BasicTextMessage(t *testing.T) {
	body := []byte(`{
		"contents": [{"role": "user", "parts": [{"text": "hi"}]}],
		"systemInstruction": {"parts": [{"text": "be terse"}]},
		"generationConfig": {"maxOutputTokens": 1024}
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.System != "be terse" {
		t.Errorf("got system %q", req.System)
	}
	if req.Config.MaxTokens == nil || *req.Config.MaxTokens != 1024 {
		t.Errorf("got max tokens %v", req.Config.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Parts[0].Text != "hi" {
		t.Errorf("got messages %+v", req.Messages)
	}
}

func TestParseRequest_FunctionCallAndResponse(t *testing.T) {
	body := []byte(`{
		"contents": [
			{"role": "model", "parts": [{"functionCall": {"name": "get_weather", "args": {"city": "nyc"}}}]},
			{"role": "user", "parts": [{"functionResponse": {"name": "get_weather", "response": {"temp": "72F"}}}]}
		]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	call := req.Messages[0].Parts[0]
	if call.Type != uir.PartToolCall || call.ToolName != "get_weather" || call.ToolCallID != "get_weather" {
		t.Errorf("got %+v", call)
	}
	result := req.Messages[1]
	if result.Role != uir.RoleTool || result.Parts[0].ToolResultForID != "get_weather" {
		t.Errorf("got %+v", result)
	}
}

func TestParseRequest_ThoughtPartPreservesSignature(t *testing.T) {
	body := []byte(`{
		"contents": [{"role": "model", "parts": [{"text": "T", "thought": true, "thoughtSignature": "S"}]}]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages) != 1 || req.Messages[0].Parts[0].Type != uir.PartThinking {
		t.Fatalf("got %+v", req.Messages)
	}
	if req.Messages[0].Parts[0].Signature != "S" {
		t.Errorf("got signature %q", req.Messages[0].Parts[0].Signature)
	}
}

func TestTransformRequest_AnyOfRenamedSnakeCase(t *testing.T) {
	req := &uir.Request{
		Messages: []uir.Message{{Role: uir.RoleUser, Parts: []uir.ContentPart{uir.Text("hi")}}},
		Tools: []uir.Tool{{
			Name: "pick",
			Parameters: map[string]interface{}{
				"anyOf": []interface{}{
					map[string]interface{}{"type": "string"},
					map[string]interface{}{"type": "integer"},
				},
			},
		}},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var raw map[string]interface{}
	json.Unmarshal(out, &raw)
	tools := raw["tools"].([]interface{})[0].(map[string]interface{})
	decl := tools["functionDeclarations"].([]interface{})[0].(map[string]interface{})
	params := decl["parameters"].(map[string]interface{})
	if _, ok := params["any_of"]; !ok {
		t.Errorf("expected any_of key in %+v", params)
	}
	if _, ok := params["anyOf"]; ok {
		t.Errorf("anyOf should have been renamed, got %+v", params)
	}
}
