// Package handler implements the request orchestrator (spec §4.7, C8):
// detect source format, parse to UIR, resolve a provider/model/account,
// transform to the upstream wire format, issue the HTTP call, and
// translate the reply (whole-body or streamed) back to the caller's
// format — retrying per the bounded policy of spec §4.7 step 7-9.
//
// Grounded on the teacher's examples/chi-server/main.go for the
// http.Client/context plumbing style, generalized from that example's
// single fixed OpenAI model call into a provider-agnostic retry loop
// over internal/router, internal/rotator and internal/cooldown.
package handler

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/digitallysavvy/go-ai/internal/codec"
	"github.com/digitallysavvy/go-ai/internal/cooldown"
	"github.com/digitallysavvy/go-ai/internal/credential"
	"github.com/digitallysavvy/go-ai/internal/promptcache"
	"github.com/digitallysavvy/go-ai/internal/router"
	"github.com/digitallysavvy/go-ai/internal/rotator"
	"github.com/digitallysavvy/go-ai/internal/sigstore"
	"github.com/digitallysavvy/go-ai/internal/telemetry"
)

// MaxAttempts bounds the retry loop (spec §4.7: "a bounded retry loop (≤
// 20 attempts)").
const MaxAttempts = 20

// Provider names with dedicated quirks (spec §4.7 step 6).
const (
	ProviderAntigravity = "antigravity"
	ProviderOpencodeZen = "opencode-zen"
	ProviderOpenAIWeb    = "openai-web"
)

// DefaultProjectID is substituted for a failing project id on an
// Antigravity license error (spec §4.7 step 8, "#3501").
const DefaultProjectID = "default"

// Endpoint is one named upstream base URL a provider can be routed
// through; Antigravity rotates across several (spec §4.7 step 8: "Daily,
// Prod, …").
type Endpoint struct {
	Name    string
	BaseURL string
}

// ProviderProfile describes how to reach one upstream provider: which
// wire codec it speaks, its endpoint(s), and how to authenticate.
type ProviderProfile struct {
	// CodecName is the registry key of the Vendor this provider's
	// upstream API speaks (not necessarily the client-facing format).
	CodecName string

	// Endpoints is the ordered list of base URLs this provider can be
	// reached through. Providers with no endpoint rotation (everything
	// but Antigravity) have exactly one entry.
	Endpoints []Endpoint

	// Path is appended to the endpoint base URL to form the full request
	// URL.
	Path string

	// AuthHeader, given a bearer token, returns the header name/value
	// pair to attach (e.g. "Authorization"/"Bearer sk-..." or
	// "x-goog-api-key"/key).
	AuthHeader func(token string) (name, value string)
}

// Handler wires the orchestration components of spec §4.7 together.
type Handler struct {
	Registry    *codec.Registry
	Router      *router.Router
	Rotator     *rotator.Rotator
	Cooldown    *cooldown.Manager
	Credentials credential.Provider
	Sigstore    *sigstore.Store
	PromptCache *promptcache.Cache
	Transport   Transport
	Logger      *zap.Logger
	Tracer      trace.Tracer

	// Providers maps provider id -> connection profile.
	Providers map[string]ProviderProfile

	// FallbackTable is the hard-coded model -> replacement-model table
	// consulted on a 429 when the router's own fallback chain is
	// exhausted (spec §4.7 step 8).
	FallbackTable map[string]string

	// MaxAttempts bounds the retry loop, defaulting to the package
	// MaxAttempts constant; cmd/llmuxd overrides it from
	// config.Routing.MaxRetryAttempts (spec §6).
	MaxAttempts int

	// Now is overridable in tests.
	Now func() time.Time
}

// New builds a Handler. Callers fill in Providers/FallbackTable after
// construction, or via the returned value's fields directly.
func New(
	registry *codec.Registry,
	rt *router.Router,
	rot *rotator.Rotator,
	cd *cooldown.Manager,
	creds credential.Provider,
	sigs *sigstore.Store,
	cache *promptcache.Cache,
	transport Transport,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Registry:      registry,
		Router:        rt,
		Rotator:       rot,
		Cooldown:      cd,
		Credentials:   creds,
		Sigstore:      sigs,
		PromptCache:   cache,
		Transport:     transport,
		Logger:        logger,
		Tracer:        telemetry.GetTracer(nil),
		Providers:     map[string]ProviderProfile{},
		FallbackTable: map[string]string{},
		MaxAttempts:   MaxAttempts,
		Now:           time.Now,
	}
}

// Transport performs the actual upstream HTTP call, injectable so tests
// never hit the network (spec §9's suspension-point list names HTTP I/O
// as the only place a request call out).
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport is the default Transport, backed by a plain
// *http.Client (teacher's examples/chi-server uses http.ListenAndServe
// directly; this is its client-side counterpart).
type HTTPTransport struct {
	Client *http.Client
}

func (t *HTTPTransport) Do(req *http.Request) (*http.Response, error) {
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	return client.Do(req)
}
