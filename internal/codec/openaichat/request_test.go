package openaichat

import (
	"encoding/json"
	"testing"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

func TestParseRequest_SystemAndUserMessage(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o",
		"messages": [
			{"role": "system", "content": "be terse"},
			{"role": "user", "content": "hi"}
		]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.System != "be terse" {
		t.Errorf("got system %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Parts[0].Text != "hi" {
		t.Errorf("got messages %+v", req.Messages)
	}
}

func TestParseRequest_ToolCallAndResult(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o",
		"messages": [
			{"role": "assistant", "content": null, "tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "search", "arguments": "{\"q\":\"go\"}"}}]},
			{"role": "tool", "tool_call_id": "call_1", "content": "results"}
		]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	tc := req.Messages[0].Parts[0]
	if tc.Type != uir.PartToolCall || tc.ToolCallID != "call_1" {
		t.Errorf("got %+v", tc)
	}
	if req.Messages[1].Role != uir.RoleTool || req.Messages[1].Parts[0].ToolResultForID != "call_1" {
		t.Errorf("got %+v", req.Messages[1])
	}
}

func TestParseRequest_ImageContent(t *testing.T) {
	body := []byte(`{
		"model": "gpt-4o",
		"messages": [{"role": "user", "content": [
			{"type": "text", "text": "what is this"},
			{"type": "image_url", "image_url": {"url": "https://example.com/x.png"}}
		]}]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := req.Messages[0].Parts
	if len(parts) != 2 || parts[1].Type != uir.PartImage || parts[1].URL != "https://example.com/x.png" {
		t.Errorf("got %+v", parts)
	}
}

func TestTransformRequest_ToolCallBecomesArgumentsString(t *testing.T) {
	req := &uir.Request{
		RequestedModel: "gpt-4o",
		Messages: []uir.Message{
			{Role: uir.RoleAssistant, Parts: []uir.ContentPart{
				{Type: uir.PartToolCall, ToolCallID: "call_1", ToolName: "search", Arguments: map[string]interface{}{"q": "go"}},
			}},
		},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire wireRequest
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(wire.Messages) != 1 || len(wire.Messages[0].ToolCalls) != 1 {
		t.Fatalf("got %+v", wire.Messages)
	}
	if wire.Messages[0].ToolCalls[0].Function.Arguments != `{"q":"go"}` {
		t.Errorf("got arguments %q", wire.Messages[0].ToolCalls[0].Function.Arguments)
	}
}

func TestParseRequest_DeveloperAndSystemMessagesJoinedByNewline(t *testing.T) {
	body := []byte(`{
		"model": "gpt-5",
		"messages": [
			{"role": "system", "content": "be terse"},
			{"role": "developer", "content": "answer in markdown"},
			{"role": "user", "content": "hi"}
		]
	}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.System != "be terse\nanswer in markdown" {
		t.Errorf("got system %q", req.System)
	}
}

func TestParseRequest_MaxCompletionTokensFallsBackForMaxTokens(t *testing.T) {
	body := []byte(`{"model": "o3-mini", "max_completion_tokens": 500, "messages": [{"role": "user", "content": "hi"}]}`)

	req, err := ParseRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Config.MaxTokens == nil || *req.Config.MaxTokens != 500 {
		t.Errorf("got MaxTokens %v", req.Config.MaxTokens)
	}
}

func TestTransformRequest_ReasoningModelUsesMaxCompletionTokensAndDeveloperRole(t *testing.T) {
	maxTokens := 1024
	effort := uir.EffortHigh
	req := &uir.Request{
		RequestedModel: "gpt-5.1-codex",
		System:         "be terse",
		Config:         uir.Config{MaxTokens: &maxTokens, Temperature: floatPtr(0.7)},
		Thinking:       &uir.Thinking{Enabled: true, Effort: &effort},
		Messages:       []uir.Message{{Role: uir.RoleUser, Parts: []uir.ContentPart{uir.Text("hi")}}},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire wireRequest
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if wire.MaxTokens != nil {
		t.Errorf("expected max_tokens omitted for a reasoning model, got %v", *wire.MaxTokens)
	}
	if wire.MaxCompletionTokens == nil || *wire.MaxCompletionTokens != 1024 {
		t.Errorf("got max_completion_tokens %v", wire.MaxCompletionTokens)
	}
	if wire.Temperature != nil {
		t.Errorf("expected temperature dropped for a reasoning model, got %v", *wire.Temperature)
	}
	if wire.ReasoningEffort == nil || *wire.ReasoningEffort != "high" {
		t.Errorf("got reasoning_effort %v", wire.ReasoningEffort)
	}
	if len(wire.Messages) != 2 || wire.Messages[0].Role != "developer" {
		t.Fatalf("expected system prompt emitted with role developer, got %+v", wire.Messages)
	}
}

func TestTransformRequest_GLMModelNestedThinkingConfig(t *testing.T) {
	req := &uir.Request{
		RequestedModel: "glm-4.6",
		Thinking:       &uir.Thinking{Enabled: true, PreserveContext: true},
		Messages:       []uir.Message{{Role: uir.RoleUser, Parts: []uir.ContentPart{uir.Text("hi")}}},
	}

	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire wireRequest
	if err := json.Unmarshal(out, &wire); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if wire.Thinking == nil || wire.Thinking.Type != "enabled" {
		t.Fatalf("got thinking config %+v", wire.Thinking)
	}
	if wire.Thinking.ClearThinking == nil || *wire.Thinking.ClearThinking != false {
		t.Errorf("expected clear_thinking=false for preserveContext=true, got %v", wire.Thinking.ClearThinking)
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestTransformRequest_ToolResultBecomesToolMessage(t *testing.T) {
	req := &uir.Request{
		RequestedModel: "gpt-4o",
		Messages: []uir.Message{
			{Role: uir.RoleTool, Parts: []uir.ContentPart{
				{Type: uir.PartToolResult, ToolResultForID: "call_1", ResultParts: []uir.ContentPart{uir.Text("72F")}},
			}},
		},
	}
	out, err := TransformRequest(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wire wireRequest
	json.Unmarshal(out, &wire)
	if len(wire.Messages) != 1 || wire.Messages[0].Role != "tool" || wire.Messages[0].ToolCallID != "call_1" {
		t.Errorf("got %+v", wire.Messages)
	}
}
