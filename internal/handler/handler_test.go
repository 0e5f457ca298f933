package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/digitallysavvy/go-ai/internal/codec"
	"github.com/digitallysavvy/go-ai/internal/codec/anthropic"
	"github.com/digitallysavvy/go-ai/internal/codec/openaichat"
	"github.com/digitallysavvy/go-ai/internal/cooldown"
	"github.com/digitallysavvy/go-ai/internal/credential"
	"github.com/digitallysavvy/go-ai/internal/detector"
	"github.com/digitallysavvy/go-ai/internal/router"
	"github.com/digitallysavvy/go-ai/internal/rotator"
)

// fakeTransport replays a canned sequence of responses, one per call, so
// tests can script a 429-then-200 retry sequence without a real network.
type fakeTransport struct {
	responses []*http.Response
	requests  []*http.Request
	calls     int
}

func (f *fakeTransport) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if f.calls >= len(f.responses) {
		return nil, io.ErrUnexpectedEOF
	}
	resp := f.responses[f.calls]
	f.calls++
	return resp, nil
}

func jsonResp(status int, body string, headers map[string]string) *http.Response {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     h,
	}
}

func newTestHandler(transport Transport, numAccounts int) (*Handler, *cooldown.Manager) {
	reg := codec.NewRegistry(openaichat.New(), anthropic.New())
	cd := cooldown.New()
	rt := router.New(map[string]router.MappingEntry{}, nil, cd)
	rot := rotator.New(cd)
	accounts := make([]credential.Credential, numAccounts)
	for i := range accounts {
		accounts[i] = credential.Credential{Kind: credential.KindAPIKey, APIKey: "sk-test"}
	}
	creds := credential.NewStatic(map[string][]credential.Credential{
		"openai_chat": accounts,
	})

	h := New(reg, rt, rot, cd, creds, nil, nil, transport, nil)
	h.Now = func() time.Time { return time.Unix(0, 0) }
	h.Providers["openai_chat"] = ProviderProfile{
		CodecName: "openai_chat",
		Endpoints: []Endpoint{{Name: "prod", BaseURL: "https://api.test"}},
		Path:      "/v1/chat/completions",
		AuthHeader: func(token string) (string, string) {
			return "Authorization", "Bearer " + token
		},
	}
	return h, cd
}

const basicChatBody = `{"model":"gpt-test:openai_chat","messages":[{"role":"user","content":"hi"}]}`

func TestHandleRequest_SuccessOnFirstAttempt(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(200, `{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, nil),
		},
	}
	h, _ := newTestHandler(transport, 1)

	w := httptest.NewRecorder()
	outcome, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(basicChatBody), RequestOptions{})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if outcome.StatusCode != 200 {
		t.Fatalf("got status %d, body %s", outcome.StatusCode, outcome.Body)
	}
	if !bytes.Contains(outcome.Body, []byte("hello")) {
		t.Errorf("expected translated body to contain reply text, got %s", outcome.Body)
	}
	if transport.calls != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", transport.calls)
	}
}

func TestHandleRequest_RetriesAfter429ThenSucceeds(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(429, `{"error":"rate limited"}`, map[string]string{"Retry-After": "0"}),
			jsonResp(200, `{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, nil),
		},
	}
	h, cd := newTestHandler(transport, 2)
	_ = cd

	w := httptest.NewRecorder()
	outcome, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(basicChatBody), RequestOptions{})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if outcome.StatusCode != 200 {
		t.Fatalf("got status %d, body %s", outcome.StatusCode, outcome.Body)
	}
	if transport.calls != 2 {
		t.Errorf("expected 2 upstream calls (429 then 200), got %d", transport.calls)
	}
}

func TestHandleRequest_AllAccountsRateLimitedReturns429(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(429, `{"error":"rate limited"}`, map[string]string{"Retry-After": "0"}),
		},
	}
	h, _ := newTestHandler(transport, 1)

	w := httptest.NewRecorder()
	outcome, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(basicChatBody), RequestOptions{})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if outcome.StatusCode != 429 {
		t.Fatalf("got status %d", outcome.StatusCode)
	}
}

func TestHandleRequest_ResponseFormatOverrideEncodesInDifferentWireFormat(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(200, `{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, nil),
		},
	}
	h, _ := newTestHandler(transport, 1)

	w := httptest.NewRecorder()
	outcome, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(basicChatBody), RequestOptions{ResponseFormat: detector.FormatAnthropic})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if outcome.StatusCode != 200 {
		t.Fatalf("got status %d, body %s", outcome.StatusCode, outcome.Body)
	}
	if !bytes.Contains(outcome.Body, []byte(`"type":"message"`)) {
		t.Errorf("expected Anthropic-shaped response body, got %s", outcome.Body)
	}
}

func TestHandleRequest_RequestedModelOverrideChangesRouting(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(200, `{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, nil),
		},
	}
	h, _ := newTestHandler(transport, 1)

	body := `{"model":"ignored:openai_chat","messages":[{"role":"user","content":"hi"}]}`
	w := httptest.NewRecorder()
	outcome, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(body), RequestOptions{RequestedModel: "gpt-test:openai_chat"})
	if err != nil {
		t.Fatalf("HandleRequest: %v", err)
	}
	if outcome.StatusCode != 200 {
		t.Fatalf("got status %d, body %s", outcome.StatusCode, outcome.Body)
	}
	if transport.calls != 1 {
		t.Errorf("expected the model override to route successfully, got %d calls", transport.calls)
	}
}

func TestHandleProxy_ToAndModelQueryParamsOverrideResponseFormatAndModel(t *testing.T) {
	transport := &fakeTransport{
		responses: []*http.Response{
			jsonResp(200, `{"id":"resp-1","choices":[{"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":1}}`, nil),
		},
	}
	h, _ := newTestHandler(transport, 1)

	body := `{"model":"ignored:openai_chat","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/proxy?from=openai_chat&to=anthropic&model=gpt-test:openai_chat", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.handleProxy(w, req)

	resp := w.Result()
	if resp.StatusCode != 200 {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	out, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(out, []byte(`"type":"message"`)) {
		t.Errorf("expected ?to=anthropic to encode the response as Anthropic, got %s", out)
	}
	if transport.calls != 1 {
		t.Errorf("expected the ?model= override to route successfully, got %d calls", transport.calls)
	}
}

func TestHandleProxy_MissingFromIsBadRequest(t *testing.T) {
	h, _ := newTestHandler(&fakeTransport{}, 1)

	req := httptest.NewRequest(http.MethodPost, "/v1/proxy", strings.NewReader(basicChatBody))
	w := httptest.NewRecorder()
	h.handleProxy(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", w.Code)
	}
}

func TestHandleRequest_UnknownProviderIsTerminal(t *testing.T) {
	h, _ := newTestHandler(&fakeTransport{}, 1)
	delete(h.Providers, "openai_chat")

	w := httptest.NewRecorder()
	_, err := h.HandleRequest(context.Background(), w, detector.FormatOpenAIChat, []byte(basicChatBody), RequestOptions{})
	if err == nil {
		t.Fatal("expected an error when no provider profile is configured")
	}
}
