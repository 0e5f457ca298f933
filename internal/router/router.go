// Package router implements model resolution (spec §4.6, C7):
// requested-model -> (providerId, upstreamModel, fallbackChain), and the
// post-resolution cool-down-aware fallback walk. Grounded on the teacher's
// pkg/registry.Registry — parseModelString's colon-split becomes
// splitExplicitSuffix below, generalized to consult a static mapping table
// and an injected dynamic lookup before giving up.
package router

import (
	"strings"
	"time"

	"github.com/digitallysavvy/go-ai/internal/cooldown"
	"github.com/digitallysavvy/go-ai/internal/uir"
)

// MappingEntry is one row of the static routing.modelMapping config table.
type MappingEntry struct {
	Provider      string
	UpstreamModel string
	Fallbacks     []string // upstream model IDs, must resolve within the same mapping
}

// ModelLookup is the injected dynamic-lookup seam (spec §4.6 step 3),
// typically backed by a cached provider /models listing.
type ModelLookup interface {
	GetProviderForModel(model string) (provider string, ok bool)
}

// Resolution is the outcome of resolving a requested model.
type Resolution struct {
	Provider      string
	UpstreamModel string
	FallbackChain []MappingEntry
}

// Router resolves requested models to upstream provider+model, consulting
// a static mapping table, an optional dynamic lookup, and finally the
// cool-down manager to skip unavailable candidates.
type Router struct {
	mapping  map[string]MappingEntry
	lookup   ModelLookup
	cooldown *cooldown.Manager
}

// New builds a Router. mapping and lookup may be nil/empty.
func New(mapping map[string]MappingEntry, lookup ModelLookup, cd *cooldown.Manager) *Router {
	if mapping == nil {
		mapping = make(map[string]MappingEntry)
	}
	return &Router{mapping: mapping, lookup: lookup, cooldown: cd}
}

// Resolve implements the ordered resolution steps of spec §4.6. It returns
// a *uir.Error with Kind uir.KindUnknownProvider if no provider can be
// determined (step 4: failure, no silent default).
func (r *Router) Resolve(requestedModel string) (Resolution, error) {
	// Step 1: explicit "model:provider" suffix.
	if model, provider, ok := splitExplicitSuffix(requestedModel); ok {
		return Resolution{Provider: provider, UpstreamModel: model}, nil
	}

	// Step 2: static mapping.
	if entry, ok := r.mapping[requestedModel]; ok {
		return Resolution{
			Provider:      entry.Provider,
			UpstreamModel: entry.UpstreamModel,
			FallbackChain: r.resolveFallbacks(entry),
		}, nil
	}

	// Step 3: dynamic lookup.
	if r.lookup != nil {
		if provider, ok := r.lookup.GetProviderForModel(requestedModel); ok {
			return Resolution{Provider: provider, UpstreamModel: requestedModel}, nil
		}
	}

	// Step 4: failure.
	return Resolution{}, uir.Newf(uir.KindUnknownProvider, nil, "no provider resolves requested model %q", requestedModel)
}

// splitExplicitSuffix splits "model:provider" on the LAST colon, since
// model IDs themselves may legitimately contain colons (e.g. date-suffixed
// vendor IDs). The provider half is trusted whenever non-empty.
func splitExplicitSuffix(requested string) (model, provider string, ok bool) {
	idx := strings.LastIndex(requested, ":")
	if idx < 0 {
		return "", "", false
	}
	provider = requested[idx+1:]
	model = requested[:idx]
	if provider == "" || model == "" {
		return "", "", false
	}
	return model, provider, true
}

// resolveFallbacks turns entry's string fallback list (upstream model IDs
// that must themselves be keys in the mapping table) into MappingEntry
// values, dropping — with no error, only a caller-visible gap — any that
// don't resolve (spec §4.6: "unresolved ones are dropped with a warning").
func (r *Router) resolveFallbacks(entry MappingEntry) []MappingEntry {
	var chain []MappingEntry
	for _, fallbackModel := range entry.Fallbacks {
		if fb, ok := r.mapping[fallbackModel]; ok {
			chain = append(chain, fb)
		}
	}
	return chain
}

// ResolveAvailable applies Resolve and then walks the fallback chain,
// skipping any (provider, upstreamModel) pair whose cool-down key is not
// available. If every candidate (primary included) is cooled down, the
// primary resolution is returned anyway — the caller experiences the
// cool-down 429 itself and decides what to do next (spec §4.6).
func (r *Router) ResolveAvailable(requestedModel string) (Resolution, error) {
	res, err := r.Resolve(requestedModel)
	if err != nil {
		return Resolution{}, err
	}

	if r.cooldown == nil || r.cooldown.IsAvailable(cooldownKey(res.Provider, res.UpstreamModel)) {
		return res, nil
	}

	for _, fb := range res.FallbackChain {
		if r.cooldown.IsAvailable(cooldownKey(fb.Provider, fb.UpstreamModel)) {
			return Resolution{Provider: fb.Provider, UpstreamModel: fb.UpstreamModel}, nil
		}
	}

	return res, nil
}

// HandleRateLimit marks the primary resolution's key (and, per spec §4.6,
// the mapped upstream of model if distinct) as cooled down.
func (r *Router) HandleRateLimit(requestedModel string, res Resolution, retryAfter *time.Duration) {
	r.cooldown.MarkRateLimited(cooldownKey(res.Provider, res.UpstreamModel), retryAfter)
	if entry, ok := r.mapping[requestedModel]; ok && (entry.Provider != res.Provider || entry.UpstreamModel != res.UpstreamModel) {
		r.cooldown.MarkRateLimited(cooldownKey(entry.Provider, entry.UpstreamModel), retryAfter)
	}
}

// cooldownKey builds the model-level (not account-level) cool-down key:
// "{provider}:{model}", distinct from rotator.Key's per-account
// "{provider}:{model}:{index}" form (spec §4.4/§4.6 track these
// independently — a model can be marked limited without any one account
// being so).
func cooldownKey(provider, model string) string {
	return provider + ":" + model
}
