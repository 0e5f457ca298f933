// Command llmuxd runs the multi-provider LLM gateway described in spec
// §6: an HTTP server translating chat-completion requests and SSE
// streams between OpenAI Chat Completions, OpenAI Responses, Anthropic
// Messages, and Google Gemini wire formats.
//
// Grounded on the teacher's examples/chi-server/main.go for flag/env
// reading and http.ListenAndServe wiring, generalized from that
// example's single hard-coded OpenAI model to the full provider set
// internal/handler orchestrates.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/digitallysavvy/go-ai/internal/codec"
	"github.com/digitallysavvy/go-ai/internal/codec/anthropic"
	"github.com/digitallysavvy/go-ai/internal/codec/gemini"
	"github.com/digitallysavvy/go-ai/internal/codec/openaichat"
	"github.com/digitallysavvy/go-ai/internal/codec/openairesp"
	"github.com/digitallysavvy/go-ai/internal/config"
	"github.com/digitallysavvy/go-ai/internal/cooldown"
	"github.com/digitallysavvy/go-ai/internal/credential"
	"github.com/digitallysavvy/go-ai/internal/handler"
	"github.com/digitallysavvy/go-ai/internal/logging"
	"github.com/digitallysavvy/go-ai/internal/promptcache"
	"github.com/digitallysavvy/go-ai/internal/router"
	"github.com/digitallysavvy/go-ai/internal/rotator"
	"github.com/digitallysavvy/go-ai/internal/sigstore"
)

func main() {
	configPath := flag.String("config", os.ExpandEnv("$HOME/.llmux/config.yaml"), "path to config.yaml")
	sigstorePath := flag.String("sigstore", os.ExpandEnv("$HOME/.llmux/signatures.db"), "path to the signature store database")
	flag.Parse()

	logger, err := logging.Init()
	if err != nil {
		fmt.Fprintf(os.Stderr, "llmuxd: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	yamlBytes, err := os.ReadFile(*configPath)
	if err != nil && !os.IsNotExist(err) {
		logger.Sugar().Fatalf("failed to read config: %v", err)
	}
	cfg, err := config.Load(yamlBytes)
	if err != nil {
		logger.Sugar().Fatalf("invalid config: %v", err)
	}

	sigs, err := sigstore.Open(*sigstorePath)
	if err != nil {
		logger.Sugar().Fatalf("failed to open signature store: %v", err)
	}
	defer sigs.Close()

	registry := codec.NewRegistry(
		openaichat.New(),
		openairesp.New(),
		anthropic.New(),
		gemini.New(),
	)

	cd := cooldown.New()
	rot := rotator.New(cd)

	mapping := make(map[string]router.MappingEntry, len(cfg.Routing.ModelMapping))
	for model, provider := range cfg.Routing.ModelMapping {
		mapping[model] = router.MappingEntry{Provider: provider, UpstreamModel: model}
	}
	rt := router.New(mapping, nil, cd)

	creds := credential.NewStatic(nil) // real credential storage is consumed externally (spec §1 Non-goals); this is a placeholder seeded from env for local runs.
	seedCredentialsFromEnv(creds)

	cache := promptcache.New(&promptcache.HTTPFetcher{BaseURL: "https://raw.githubusercontent.com/openai/codex/main/prompts"})

	transport := &handler.HTTPTransport{Client: http.DefaultClient}

	h := handler.New(registry, rt, rot, cd, creds, sigs, cache, transport, logger)
	h.Providers = defaultProviderProfiles()
	h.FallbackTable = map[string]string{}
	if cfg.Routing.MaxRetryAttempts > 0 {
		h.MaxAttempts = cfg.Routing.MaxRetryAttempts
	}

	srv := handler.NewRouter(h, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	logger.Sugar().Infof("llmuxd listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		logger.Sugar().Fatalf("server exited: %v", err)
	}
}

// seedCredentialsFromEnv populates the credential.Static test double from
// well-known env vars, standing in for the external credential store
// (spec §1 Non-goals: "credential-file persistence").
func seedCredentialsFromEnv(creds *credential.Static) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		creds.Set("openai_chat", []credential.Credential{{Kind: credential.KindAPIKey, APIKey: key}})
		creds.Set("openai_responses", []credential.Credential{{Kind: credential.KindAPIKey, APIKey: key}})
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		creds.Set("anthropic", []credential.Credential{{Kind: credential.KindAPIKey, APIKey: key}})
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		creds.Set("gemini", []credential.Credential{{Kind: credential.KindAPIKey, APIKey: key}})
	}
}

// defaultProviderProfiles wires the built-in providers to their upstream
// codec, endpoint(s), and auth header shape (spec §4.7 step 5-6).
func defaultProviderProfiles() map[string]handler.ProviderProfile {
	bearer := func(token string) (string, string) { return "Authorization", "Bearer " + token }
	googleKey := func(token string) (string, string) { return "x-goog-api-key", token }

	return map[string]handler.ProviderProfile{
		"openai_chat": {
			CodecName:  "openai_chat",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://api.openai.com"}},
			Path:       "/v1/chat/completions",
			AuthHeader: bearer,
		},
		"openai_responses": {
			CodecName:  "openai_responses",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://api.openai.com"}},
			Path:       "/v1/responses",
			AuthHeader: bearer,
		},
		"anthropic": {
			CodecName:  "anthropic",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://api.anthropic.com"}},
			Path:       "/v1/messages",
			AuthHeader: func(token string) (string, string) { return "x-api-key", token },
		},
		"gemini": {
			CodecName:  "gemini",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://generativelanguage.googleapis.com"}},
			Path:       "/v1beta/models/gemini:generateContent",
			AuthHeader: googleKey,
		},
		handler.ProviderAntigravity: {
			CodecName: "gemini",
			Endpoints: []handler.Endpoint{
				{Name: "daily", BaseURL: "https://daily.antigravity.internal"},
				{Name: "prod", BaseURL: "https://prod.antigravity.internal"},
			},
			Path:       "/v1/generateContent",
			AuthHeader: bearer,
		},
		handler.ProviderOpencodeZen: {
			CodecName:  "anthropic",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://opencode-zen.internal"}},
			Path:       "/v1/messages",
			AuthHeader: bearer,
		},
		handler.ProviderOpenAIWeb: {
			CodecName:  "openai_responses",
			Endpoints:  []handler.Endpoint{{Name: "prod", BaseURL: "https://chatgpt.com/backend-api/codex"}},
			Path:       "/responses",
			AuthHeader: bearer,
		},
	}
}
