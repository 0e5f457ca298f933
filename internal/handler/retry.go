package handler

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/digitallysavvy/go-ai/internal/detector"
	"github.com/digitallysavvy/go-ai/internal/logging"
	"github.com/digitallysavvy/go-ai/internal/router"
	"github.com/digitallysavvy/go-ai/internal/telemetry"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// Outcome is the terminal result of HandleRequest: either a whole-body
// response ready to write, or an indication that the caller already
// streamed the reply directly to the ResponseWriter.
type Outcome struct {
	StatusCode int
	Body       []byte
	Streamed   bool
}

// providerState tracks per-provider retry bookkeeping scoped to one
// inbound request's attempt chain (spec §4.7 step 8): which endpoint in
// an Antigravity-style rotation list is current, and whether the
// license-error project-id fallback has already been tried once.
type providerState struct {
	endpointIdx    int
	licenseRetried bool
}

// RequestOptions carries the /v1/proxy query-param overrides of spec §6
// ("POST /v1/proxy — explicit format passthrough with query
// from/to/model"): ResponseFormat overrides the codec the reply is
// encoded back into, independent of whichever upstream ends up serving
// the request, and RequestedModel overrides the model the router
// resolves on. Both are empty for the fixed-format endpoints.
type RequestOptions struct {
	ResponseFormat detector.Format
	RequestedModel string
}

// HandleRequest implements the orchestrator of spec §4.7 steps 1-9.
// sourceFormat is the caller's wire format (already detected, or forced
// by /v1/proxy). When the parsed request is a streaming one, the
// translated reply is written directly to w and Outcome.Streamed is
// true; otherwise Outcome.Body holds the whole translated body.
func (h *Handler) HandleRequest(ctx context.Context, w http.ResponseWriter, sourceFormat detector.Format, body []byte, opts RequestOptions) (Outcome, error) {
	sourceCodec, ok := h.Registry.Get(string(sourceFormat))
	if !ok {
		return Outcome{}, uir.Newf(uir.KindUnknownProvider, nil, "unrecognized source format %q", sourceFormat)
	}

	req, err := sourceCodec.ParseRequest(body)
	if err != nil {
		return Outcome{}, uir.SchemaMismatch(string(sourceFormat), err)
	}
	if opts.RequestedModel != "" {
		req.RequestedModel = opts.RequestedModel
	}

	responseCodec := sourceCodec
	if opts.ResponseFormat != "" && opts.ResponseFormat != sourceFormat {
		responseCodec, ok = h.Registry.Get(string(opts.ResponseFormat))
		if !ok {
			return Outcome{}, uir.Newf(uir.KindUnknownProvider, nil, "unrecognized response format %q", opts.ResponseFormat)
		}
	}

	chainID := uuid.NewString()
	defer h.Rotator.ForgetChain(chainID)

	ctx, span := telemetry.StartRequest(ctx, h.Tracer, string(sourceFormat), req.RequestedModel)
	defer span.End()

	resolution, err := h.Router.ResolveAvailable(req.RequestedModel)
	if err != nil {
		telemetry.RecordError(span, err)
		return Outcome{}, err
	}

	candidates := append(
		[]router.MappingEntry{{Provider: resolution.Provider, UpstreamModel: resolution.UpstreamModel}},
		resolution.FallbackChain...,
	)
	states := map[string]*providerState{}

	var lastOutcome Outcome
	var lastErr error

	for i := 0; i < h.MaxAttempts; i++ {
		if ctx.Err() != nil {
			return Outcome{}, uir.New(uir.KindCancelled, "client disconnected", ctx.Err())
		}

		candidate := candidates[i%len(candidates)]
		profile, ok := h.Providers[candidate.Provider]
		if !ok {
			lastErr = uir.Newf(uir.KindUnknownProvider, nil, "no connection profile for provider %q", candidate.Provider)
			break
		}
		state := states[candidate.Provider]
		if state == nil {
			state = &providerState{}
			states[candidate.Provider] = state
		}

		creds, err := h.Credentials.EnsureFresh(candidate.Provider)
		if err != nil || len(creds) == 0 {
			lastErr = uir.New(uir.KindNoCredentials, "no credentials for provider "+candidate.Provider, err)
			break
		}

		accountIdx := h.Rotator.GetNextAvailable(chainID, candidate.Provider, candidate.UpstreamModel, len(creds))
		if accountIdx < 0 {
			if h.Rotator.AreAllRateLimited(candidate.Provider, candidate.UpstreamModel, len(creds)) {
				h.Router.HandleRateLimit(req.RequestedModel, resolution, nil)
				lastOutcome = Outcome{StatusCode: http.StatusTooManyRequests, Body: errorBody("all accounts rate-limited")}
			}
			continue
		}

		result := h.attempt(ctx, w, responseCodec, req, candidate, profile, creds[accountIdx], accountIdx, state)
		telemetry.RecordAttempt(span, candidate.Provider, accountIdx, result.StatusCode, result.NetworkErr)
		h.logAttempt(candidate.Provider, accountIdx, req.RequestedModel, result)

		switch {
		case result.NetworkErr != nil:
			lastErr = uir.New(uir.KindUpstreamNetwork, "upstream network error", result.NetworkErr)
			time.Sleep(backoffDelay(i))
			continue

		case result.StatusCode >= 200 && result.StatusCode < 300:
			return Outcome{StatusCode: result.StatusCode, Body: result.Body, Streamed: result.Streamed}, nil

		case result.StatusCode == http.StatusTooManyRequests:
			h.Rotator.MarkRateLimited(candidate.Provider, candidate.UpstreamModel, accountIdx, result.RetryAfter)
			h.Rotator.MarkTried(chainID, accountIdx)
			if candidate.Provider == ProviderAntigravity {
				state.endpointIdx = nextEndpointIndex(profile, state.endpointIdx)
			}
			if h.Rotator.AreAllRateLimited(candidate.Provider, candidate.UpstreamModel, len(creds)) {
				h.Router.HandleRateLimit(req.RequestedModel, resolution, result.RetryAfter)
				if fallback, ok := h.FallbackTable[candidate.UpstreamModel]; ok {
					candidates = append(candidates, router.MappingEntry{Provider: candidate.Provider, UpstreamModel: fallback})
				}
			}
			lastOutcome = Outcome{StatusCode: http.StatusTooManyRequests, Body: result.Body}
			if h.allCandidatesRateLimited(candidates, len(creds)) {
				return lastOutcome, nil
			}
			if result.RetryAfter != nil {
				time.Sleep(clampRetryAfter(*result.RetryAfter))
			}
			continue

		case (result.StatusCode == 403 || result.StatusCode == 400) && candidate.Provider == ProviderAntigravity && isAntigravityLicenseError(result.StatusCode, result.Body):
			if !state.licenseRetried {
				state.licenseRetried = true
				continue
			}
			state.endpointIdx = nextEndpointIndex(profile, state.endpointIdx)
			continue

		case result.StatusCode >= 500 && candidate.Provider == ProviderAntigravity:
			state.endpointIdx = nextEndpointIndex(profile, state.endpointIdx)
			continue

		default:
			return Outcome{StatusCode: result.StatusCode, Body: result.Body}, nil
		}
	}

	if lastErr != nil {
		return Outcome{}, lastErr
	}
	if lastOutcome.StatusCode == 0 {
		lastOutcome = Outcome{StatusCode: http.StatusInternalServerError, Body: errorBody("retry loop exhausted")}
	}
	return lastOutcome, nil
}

// allCandidatesRateLimited reports whether every resolved candidate's
// full account pool is presently cooled down (spec §4.7 step 8:
// "areAllRateLimited").
func (h *Handler) allCandidatesRateLimited(candidates []router.MappingEntry, numCreds int) bool {
	for _, c := range candidates {
		if !h.Rotator.AreAllRateLimited(c.Provider, c.UpstreamModel, numCreds) {
			return false
		}
	}
	return true
}

// nextEndpointIndex advances the Antigravity endpoint-rotation index,
// wrapping at the end of the ordered list (spec §4.7 step 8: "rotating
// to the next endpoint in a fixed ordered list").
func nextEndpointIndex(profile ProviderProfile, current int) int {
	if len(profile.Endpoints) == 0 {
		return 0
	}
	return (current + 1) % len(profile.Endpoints)
}

func (h *Handler) logAttempt(provider string, account int, model string, result attemptResult) {
	h.Logger.Info("attempt",
		logging.Provider(provider),
		logging.Account(account),
		logging.Model(model),
		logging.Status(result.StatusCode),
		logging.DurationMS(float64(result.Duration.Milliseconds())),
	)
}

// errorBody builds the {error: string} body spec §6 requires for
// non-upstream-verbatim error responses.
func errorBody(msg string) []byte {
	b, _ := json.Marshal(map[string]string{"error": msg})
	return b
}

// backoffDelay implements spec §4.7 step 7's network-error back-off: 1s
// doubling to 8s, capped.
func backoffDelay(attempt int) time.Duration {
	d := time.Second * time.Duration(math.Pow(2, float64(attempt)))
	if d > 8*time.Second {
		d = 8 * time.Second
	}
	return d
}

// clampRetryAfter implements "sleep min(retryAfter, 30s)" from spec §4.7
// step 8.
func clampRetryAfter(d time.Duration) time.Duration {
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}
