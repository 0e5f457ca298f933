package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/digitallysavvy/go-ai/internal/config"
	"github.com/digitallysavvy/go-ai/internal/detector"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// NewRouter builds the chi router serving the HTTP surface of spec §6,
// grounded on the teacher's examples/chi-server/main.go middleware
// stack (Logger, Recoverer, Timeout, cors.Handler), generalized from
// that example's single /generate route to the gateway's full endpoint
// set.
func NewRouter(h *Handler, cfg config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORS,
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", h.handleHealth)
	r.Get("/providers", h.handleProviders)
	r.Get("/models", h.handleModels(cfg))

	r.Post("/v1/chat/completions", h.handleFixedFormat(detector.FormatOpenAIChat))
	r.Post("/v1/messages", h.handleFixedFormat(detector.FormatAnthropic))
	r.Post("/v1/generateContent", h.handleFixedFormat(detector.FormatGemini))
	r.Post("/v1/streamGenerateContent", h.handleFixedFormat(detector.FormatGemini))
	r.Post("/v1/responses", h.handleFixedFormat(detector.FormatOpenAIResponses))
	r.Post("/v1/proxy", h.handleProxy)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleProviders(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.Providers))
	for name := range h.Providers {
		names = append(names, name)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"providers": names})
}

// modelListEntry is one row of the /models response's data array (spec
// §6: "{object:'list', data: [{id, provider}…], providers: [string],
// mappings?: {from:to}}").
type modelListEntry struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

func (h *Handler) handleModels(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := make([]modelListEntry, 0, len(cfg.Routing.ModelMapping))
		for model, entry := range cfg.Routing.ModelMapping {
			data = append(data, modelListEntry{ID: model, Provider: entry})
		}
		providers := make([]string, 0, len(h.Providers))
		for name := range h.Providers {
			providers = append(providers, name)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"object":    "list",
			"data":      data,
			"providers": providers,
			"mappings":  cfg.Routing.ModelMapping,
		})
	}
}

// handleFixedFormat serves an endpoint whose client wire format is fixed
// by its path (spec §6's per-endpoint listing).
func (h *Handler) handleFixedFormat(format detector.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, format, RequestOptions{})
	}
}

// handleProxy serves POST /v1/proxy, an explicit format passthrough with
// query params from/to/model (spec §6): "from" forces the source format
// the same way the fixed-format endpoints do; "to" overrides the codec
// the reply is encoded back into, independent of whichever upstream the
// router resolves the request to; "model" overrides the requested model
// before routing.
func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from := detector.Format(query.Get("from"))
	if from == "" {
		writeError(w, http.StatusBadRequest, "missing ?from=")
		return
	}
	opts := RequestOptions{
		ResponseFormat: detector.Format(query.Get("to")),
		RequestedModel: query.Get("model"),
	}
	h.serve(w, r, from, opts)
}

// serve reads the body, resolves sourceFormat (auto-detecting when empty,
// e.g. for endpoints that accept any client shape), runs the retry loop,
// and writes the outcome.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, sourceFormat detector.Format, opts RequestOptions) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if sourceFormat == "" {
		sourceFormat = detector.Detect(body)
	}

	outcome, err := h.HandleRequest(r.Context(), w, sourceFormat, body, opts)
	if err != nil {
		writeError(w, statusForErr(err), err.Error())
		return
	}
	if outcome.Streamed {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(outcome.StatusCode)
	w.Write(outcome.Body)
}

func statusForErr(err error) int {
	if e, ok := err.(*uir.Error); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
