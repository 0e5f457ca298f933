package uir

import "testing"

func TestRequest_Validate_ImagePart(t *testing.T) {
	t.Parallel()

	req := &Request{Messages: []Message{{
		Role: RoleUser,
		Parts: []ContentPart{
			{Type: PartImage, MimeType: "image/png", Data: []byte("x"), URL: "http://example.com/x.png"},
		},
	}}}
	if err := req.Validate(); err == nil {
		t.Error("expected error when both data and url are set on an image part")
	}

	req.Messages[0].Parts[0].URL = ""
	if err := req.Validate(); err != nil {
		t.Errorf("unexpected error for data-only image part: %v", err)
	}
}

func TestRequest_Validate_ToolRoleExactlyOneResult(t *testing.T) {
	t.Parallel()

	req := &Request{Messages: []Message{
		{Role: RoleAssistant, Parts: []ContentPart{{Type: PartToolCall, ToolCallID: "call_1", ToolName: "get_weather"}}},
		{Role: RoleTool, Parts: []ContentPart{
			{Type: PartToolResult, ToolResultForID: "call_1"},
			{Type: PartToolResult, ToolResultForID: "call_1"},
		}},
	}}
	if err := req.Validate(); err == nil {
		t.Error("expected error when a tool message carries more than one tool_result part")
	}
}

func TestRequest_Validate_ToolResultMustReferenceEarlierCall(t *testing.T) {
	t.Parallel()

	req := &Request{Messages: []Message{
		{Role: RoleTool, Parts: []ContentPart{{Type: PartToolResult, ToolResultForID: "call_unknown"}}},
	}}
	if err := req.Validate(); err == nil {
		t.Error("expected error when tool_result references a tool_call id that never appeared")
	}
}

func TestRequest_FindToolCall(t *testing.T) {
	t.Parallel()

	req := &Request{Messages: []Message{
		{Role: RoleAssistant, Parts: []ContentPart{{Type: PartToolCall, ToolCallID: "call_1", ToolName: "get_weather"}}},
	}}
	if _, ok := req.FindToolCall("call_1"); !ok {
		t.Error("expected to find call_1")
	}
	if _, ok := req.FindToolCall("call_missing"); ok {
		t.Error("did not expect to find call_missing")
	}
}
