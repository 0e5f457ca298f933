package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"

	"github.com/digitallysavvy/go-ai/internal/uir"
)

// reattachThoughtSignatures implements the Antigravity thinking path
// (spec §4.7 step 6, §4.8, §4.9): any carried thought_signature on a
// thinking or tool_call part is checked against the signature store; a
// signature never issued under the current project is stripped rather
// than re-keyed, since this gateway has no way to recover the original
// request's project context to re-key into (an Open Question the spec
// leaves unresolved — "either re-keyed ... or the signature is
// stripped" — decided here in favor of the always-safe stripped path;
// recorded in DESIGN.md).
func (h *Handler) reattachThoughtSignatures(ctx context.Context, req *uir.Request, projectID string) {
	if h.Sigstore == nil {
		return
	}
	for i := range req.Messages {
		parts := req.Messages[i].Parts
		for j := range parts {
			p := &parts[j]
			if p.Signature == "" {
				continue
			}
			if p.Type != uir.PartThinking && p.Type != uir.PartToolCall {
				continue
			}
			if !h.Sigstore.IsValidForProject(ctx, p.Signature, projectID) {
				p.Signature = ""
			}
		}
	}
}

// saveThoughtSignatures records every thought_signature present on a
// completed Antigravity response so a later request carrying it back can
// be validated (spec §4.8).
func (h *Handler) saveThoughtSignatures(ctx context.Context, resp *uir.Response, projectID, provider, endpoint string, account int) {
	if h.Sigstore == nil {
		return
	}
	for _, p := range resp.Content {
		if p.Signature == "" {
			continue
		}
		_ = h.Sigstore.SaveSignature(ctx, p.Signature, projectID, provider, endpoint, account)
	}
	for _, tb := range resp.Thinking {
		if tb.Signature == "" {
			continue
		}
		_ = h.Sigstore.SaveSignature(ctx, tb.Signature, projectID, provider, endpoint, account)
	}
}

// applyAntigravityProjectField injects the project field into an
// upstream Gemini-shaped JSON body (spec §4.7 step 6: "add project
// field").
func applyAntigravityProjectField(body []byte, projectID string) ([]byte, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	m["project"] = projectID
	return json.Marshal(m)
}

var licenseErrorCode = regexp.MustCompile(`#3501`)
var permissionDenied = regexp.MustCompile(`PERMISSION_DENIED`)

// isAntigravityLicenseError reports whether a 403/400 body is the
// Antigravity license-error shape (spec §4.7 step 8: "`#3501` or
// `PERMISSION_DENIED` + `license`").
func isAntigravityLicenseError(statusCode int, body []byte) bool {
	if statusCode != 403 && statusCode != 400 {
		return false
	}
	if licenseErrorCode.Match(body) {
		return true
	}
	return permissionDenied.Match(body) && containsLicense(body)
}

func containsLicense(body []byte) bool {
	return bytes.Contains(body, []byte("license")) || bytes.Contains(body, []byte("License"))
}

// opencodeZenBetaHeaders are the Anthropic-only beta feature headers this
// provider's upstream rejects (spec §4.7 step 6: "strip ... if they are
// unsupported").
var opencodeZenBetaHeaders = []string{
	"anthropic-beta",
}

// applyOpencodeZenHeaderQuirks strips unsupported beta headers in place.
func applyOpencodeZenHeaderQuirks(headers map[string]string) {
	for _, h := range opencodeZenBetaHeaders {
		delete(headers, h)
	}
}

// openAIWebWrapper is the request shape the ChatGPT Codex backend expects
// (spec §4.7 step 6): "{input, instructions, store:false, stream:true}".
type openAIWebWrapper struct {
	Input        json.RawMessage `json:"input"`
	Instructions string          `json:"instructions"`
	Store        bool            `json:"store"`
	Stream       bool            `json:"stream"`
}

// applyOpenAIWebWrapper wraps an already-transformed OpenAI Responses
// body under the openai-web envelope, fetching the model's cached
// instructions template (spec §4.7.3). Only the Responses body's "input"
// items array is carried into the wrapper's own "input" field — the rest
// of the inner body (model, tools, stream, ...) is the openairesp
// codec's own envelope and isn't part of what openai-web expects.
func (h *Handler) applyOpenAIWebWrapper(ctx context.Context, innerBody []byte, model string) ([]byte, error) {
	var inner struct {
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal(innerBody, &inner); err != nil {
		return nil, err
	}

	instructions := ""
	if h.PromptCache != nil {
		instructions = h.PromptCache.Get(ctx, model)
	}
	wrapped := openAIWebWrapper{
		Input:        inner.Input,
		Instructions: instructions,
		Store:        false,
		Stream:       true,
	}
	return json.Marshal(wrapped)
}
