package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/digitallysavvy/go-ai/internal/codec"
	"github.com/digitallysavvy/go-ai/internal/cooldown"
	"github.com/digitallysavvy/go-ai/internal/credential"
	"github.com/digitallysavvy/go-ai/internal/router"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// attemptResult is the outcome of a single upstream HTTP call (spec §4.7
// steps 5-8).
type attemptResult struct {
	StatusCode int
	Body       []byte
	Streamed   bool
	RetryAfter *time.Duration
	NetworkErr error
	Duration   time.Duration
}

// attempt performs one upstream call for candidate/profile/cred and
// translates the reply back into the caller's wire format (spec §4.7
// steps 5-8). On a streaming request the translated reply is written
// directly to w as it arrives and attemptResult.Streamed is set.
func (h *Handler) attempt(
	ctx context.Context,
	w http.ResponseWriter,
	sourceCodec codec.Vendor,
	req *uir.Request,
	candidate router.MappingEntry,
	profile ProviderProfile,
	cred credential.Credential,
	accountIdx int,
	state *providerState,
) attemptResult {
	started := h.Now()

	upstreamCodec, ok := h.Registry.Get(profile.CodecName)
	if !ok {
		return attemptResult{NetworkErr: errUnknownUpstreamCodec(profile.CodecName)}
	}

	projectID := cred.ProjectID
	if state.licenseRetried {
		projectID = DefaultProjectID
	}
	if candidate.Provider == ProviderAntigravity {
		h.reattachThoughtSignatures(ctx, req, projectID)
	}

	req.RequestedModel = candidate.UpstreamModel

	upstreamBody, err := upstreamCodec.TransformRequest(req)
	if err != nil {
		return attemptResult{NetworkErr: err}
	}

	if candidate.Provider == ProviderAntigravity {
		upstreamBody, err = applyAntigravityProjectField(upstreamBody, projectID)
		if err != nil {
			return attemptResult{NetworkErr: err}
		}
	}
	if candidate.Provider == ProviderOpenAIWeb {
		upstreamBody, err = h.applyOpenAIWebWrapper(ctx, upstreamBody, candidate.UpstreamModel)
		if err != nil {
			return attemptResult{NetworkErr: err}
		}
	}

	if len(profile.Endpoints) == 0 {
		return attemptResult{NetworkErr: errors.New("handler: provider " + candidate.Provider + " has no endpoints configured")}
	}
	endpoint := profile.Endpoints[state.endpointIdx%len(profile.Endpoints)]

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.BaseURL+profile.Path, bytes.NewReader(upstreamBody))
	if err != nil {
		return attemptResult{NetworkErr: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	headers := map[string]string{}
	if profile.AuthHeader != nil {
		token := cred.AccessToken
		if cred.Kind == credential.KindAPIKey {
			token = cred.APIKey
		}
		name, value := profile.AuthHeader(token)
		headers[name] = value
	}
	if candidate.Provider == ProviderOpencodeZen {
		applyOpencodeZenHeaderQuirks(headers)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := h.Transport.Do(httpReq)
	if err != nil {
		return attemptResult{NetworkErr: err, Duration: h.Now().Sub(started)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		retryAfter := cooldown.ParseRetryAfter(resp, raw)
		return attemptResult{StatusCode: resp.StatusCode, Body: raw, RetryAfter: retryAfter, Duration: h.Now().Sub(started)}
	}

	if !req.Stream {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return attemptResult{NetworkErr: err, Duration: h.Now().Sub(started)}
		}
		uirResp, err := upstreamCodec.ParseResponse(raw)
		if err != nil {
			return attemptResult{StatusCode: http.StatusBadGateway, Body: errorBody("invalid upstream response"), Duration: h.Now().Sub(started)}
		}
		if candidate.Provider == ProviderAntigravity {
			h.saveThoughtSignatures(ctx, uirResp, projectID, candidate.Provider, endpoint.Name, accountIdx)
		}
		out, err := sourceCodec.TransformResponse(uirResp)
		if err != nil {
			return attemptResult{NetworkErr: err, Duration: h.Now().Sub(started)}
		}
		return attemptResult{StatusCode: http.StatusOK, Body: out, Duration: h.Now().Sub(started)}
	}

	h.translateStream(ctx, w, upstreamCodec, sourceCodec, resp.Body)
	return attemptResult{StatusCode: http.StatusOK, Streamed: true, Duration: h.Now().Sub(started)}
}

type errUnknownUpstreamCodecErr struct{ name string }

func (e errUnknownUpstreamCodecErr) Error() string { return "handler: unknown upstream codec " + e.name }

func errUnknownUpstreamCodec(name string) error { return errUnknownUpstreamCodecErr{name} }
