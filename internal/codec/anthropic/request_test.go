package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

func TestParseRequest_BasicTextMessage(t *testing.T) {
	body := []byte(`{
		"model": "claude-3-opus-20240229",
		"max_tokens": 1024,
		"system": "be terse",
		"messages": [{"role": "user", "content": [{"type": "text", "text": "hi"}]}]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.RequestedModel != "claude-3-opus-20240229" {
		t.Errorf("got model %q", req.RequestedModel)
	}
	if req.System != "be terse" {
		t.Errorf("got system %q", req.System)
	}
	if *req.Config.MaxTokens != 1024 {
		t.Errorf("got max tokens %v", req.Config.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Parts[0].Text != "hi" {
		t.Errorf("got messages %+v", req.Messages)
	}
}

func TestParseRequest_ToolUseAndToolResult(t *testing.T) {
	body := []byte(`{
		"model": "claude-3-opus-20240229",
		"max_tokens": 100,
		"messages": [
			{"role": "assistant", "content": [{"type": "tool_use", "id": "call_1", "name": "get_weather", "input": {"city": "nyc"}}]},
			{"role": "user", "content": [{"type": "tool_result", "tool_use_id": "call_1", "content": "72F"}]}
		]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	toolCall := req.Messages[0].Parts[0]
	if toolCall.Type != uir.PartToolCall || toolCall.ToolCallID != "call_1" {
		t.Errorf("got %+v", toolCall)
	}
	toolResultMsg := req.Messages[1]
	if toolResultMsg.Role != uir.RoleTool {
		t.Errorf("expected tool role, got %v", toolResultMsg.Role)
	}
	if toolResultMsg.Parts[0].ToolResultForID != "call_1" {
		t.Errorf("got %+v", toolResultMsg.Parts[0])
	}
}

func TestTransformRequest_RoundTripsBasics(t *testing.T) {
	maxTokens := 500
	req := &uir.Request{
		RequestedModel: "claude-3-5-sonnet",
		System:         "be helpful",
		Config:         uir.Config{MaxTokens: &maxTokens},
		Messages: []uir.Message{
			{Role: uir.RoleUser, Parts: []uir.ContentPart{uir.Text("hello")}},
		},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wire wireRequest
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if wire.Model != "claude-3-5-sonnet" || wire.MaxTokens != 500 {
		t.Errorf("got %+v", wire)
	}
	if wire.System != "be helpful" {
		t.Errorf("got system %v", wire.System)
	}
}

func TestTransformRequest_ThinkingDisablesSamplingParams(t *testing.T) {
	temp := 0.7
	budget := 2048
	req := &uir.Request{
		RequestedModel: "claude-3-5-sonnet",
		Config:         uir.Config{Temperature: &temp},
		Thinking:       &uir.Thinking{Enabled: true, Budget: &budget},
		Messages:       []uir.Message{{Role: uir.RoleUser, Parts: []uir.ContentPart{uir.Text("hi")}}},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire wireRequest
	json.Unmarshal(out, &wire)
	if wire.Temperature != nil {
		t.Errorf("expected temperature omitted while thinking enabled, got %v", *wire.Temperature)
	}
	if wire.Thinking == nil || wire.Thinking.Type != "enabled" || *wire.Thinking.BudgetTokens != 2048 {
		t.Errorf("got thinking config %+v", wire.Thinking)
	}
}
