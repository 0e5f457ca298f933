package handler

import (
	"context"
	"encoding/json"
	"testing"
)

func TestIsAntigravityLicenseError(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"code 3501", 403, `{"error":"#3501 something"}`, true},
		{"permission denied with license", 400, `{"error":"PERMISSION_DENIED: no license"}`, true},
		{"permission denied without license", 400, `{"error":"PERMISSION_DENIED"}`, false},
		{"unrelated 403", 403, `{"error":"forbidden"}`, false},
		{"wrong status", 500, `{"error":"#3501"}`, false},
	}
	for _, c := range cases {
		if got := isAntigravityLicenseError(c.status, []byte(c.body)); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestApplyAntigravityProjectField(t *testing.T) {
	out, err := applyAntigravityProjectField([]byte(`{"contents":[]}`), "proj-1")
	if err != nil {
		t.Fatalf("applyAntigravityProjectField: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["project"] != "proj-1" {
		t.Errorf("got project=%v", m["project"])
	}
}

func TestApplyOpenAIWebWrapper_WrapsInputItemsNotWholeBody(t *testing.T) {
	h := &Handler{}
	innerBody := []byte(`{"model":"gpt-4o","input":[{"type":"message","role":"user","content":"hi"}],"stream":true,"tools":[]}`)

	out, err := h.applyOpenAIWebWrapper(context.Background(), innerBody, "gpt-4o")
	if err != nil {
		t.Fatalf("applyOpenAIWebWrapper: %v", err)
	}

	var wrapped struct {
		Input        []map[string]interface{} `json:"input"`
		Instructions string                   `json:"instructions"`
		Store        bool                     `json:"store"`
		Stream       bool                     `json:"stream"`
	}
	if err := json.Unmarshal(out, &wrapped); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(wrapped.Input) != 1 || wrapped.Input[0]["type"] != "message" {
		t.Fatalf("expected wrapper input to be the items array, got %+v", wrapped.Input)
	}
	if wrapped.Store != false || wrapped.Stream != true {
		t.Errorf("got store=%v stream=%v", wrapped.Store, wrapped.Stream)
	}

	var raw map[string]interface{}
	json.Unmarshal(out, &raw)
	if _, ok := raw["model"]; ok {
		t.Errorf("expected the inner body's own model/tools/stream fields not to leak into the wrapper, got %+v", raw)
	}
}

func TestApplyOpencodeZenHeaderQuirks_StripsBetaHeader(t *testing.T) {
	headers := map[string]string{"anthropic-beta": "computer-use-2025", "content-type": "application/json"}
	applyOpencodeZenHeaderQuirks(headers)
	if _, ok := headers["anthropic-beta"]; ok {
		t.Error("expected anthropic-beta header stripped")
	}
	if _, ok := headers["content-type"]; !ok {
		t.Error("expected unrelated header preserved")
	}
}
