// Package promptcache implements the Codex-path prompt-template cache
// (spec §4.7.3): per-model-family instruction templates fetched from a
// versioned public source, revalidated with If-None-Match, and served
// stale (or from a built-in default) on fetch failure. Fetching the
// templates from their GitHub-hosted source is an external concern (spec
// §1 Non-goals list "GitHub-fetched prompt templates"); this package only
// owns the family-keyed cache and the revalidation state machine, driven
// through the Fetcher interface below.
//
// Grounded on the teacher's net/http request style (e.g.
// pkg/providers/bfl/image_model.go's DoGenerate: context, status-code
// check, io.ReadAll) for the default Fetcher implementation.
package promptcache

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TTL is how long a cached entry is trusted before revalidation (spec
// §4.7.3: "15-minute TTL").
const TTL = 15 * time.Minute

// families maps a model-family glob prefix to the template URL suffix
// used to fetch it, in the priority order the spec lists (most specific
// family first, so "gpt-5.2-codex-mini" matches "gpt-5.2-codex*" before
// the broader "gpt-5.2*").
var families = []string{
	"gpt-5.2-codex",
	"codex-max",
	"gpt-5.2",
	"gpt-5.1",
	"codex",
}

// DefaultTemplate is served when no cached entry exists and a fetch fails
// (spec §4.7.3: "a network failure falls back to a stale cached entry or
// a built-in default string").
const DefaultTemplate = "You are a helpful coding assistant."

// FamilyFor maps a model ID to its template family using the static
// table (spec §4.7.3), or "" if no family matches.
func FamilyFor(model string) string {
	for _, f := range families {
		if strings.HasPrefix(model, f) {
			return f
		}
	}
	return ""
}

// entry is one cached template.
type entry struct {
	body        string
	etag        string
	lastChecked time.Time
}

// Fetcher retrieves a family's template body, given the previously seen
// ETag (empty on first fetch). notModified is true on an HTTP 304.
type Fetcher interface {
	Fetch(ctx context.Context, family, etag string) (body, newETag string, notModified bool, err error)
}

// Cache is the family-keyed prompt-template cache.
type Cache struct {
	fetcher Fetcher

	mu      sync.Mutex
	entries map[string]entry

	// now is overridable in tests.
	now func() time.Time
}

// New builds a Cache backed by fetcher.
func New(fetcher Fetcher) *Cache {
	return &Cache{fetcher: fetcher, entries: map[string]entry{}, now: time.Now}
}

// Get returns the instruction template for model, fetching or
// revalidating as needed (spec §4.7.3).
func (c *Cache) Get(ctx context.Context, model string) string {
	family := FamilyFor(model)
	if family == "" {
		return DefaultTemplate
	}

	c.mu.Lock()
	e, ok := c.entries[family]
	c.mu.Unlock()

	if ok && c.now().Sub(e.lastChecked) < TTL {
		return e.body
	}

	body, etag, notModified, err := c.fetcher.Fetch(ctx, family, e.etag)
	switch {
	case err != nil:
		if ok {
			// stale cached entry beats a built-in default (spec §4.7.3).
			return e.body
		}
		return DefaultTemplate
	case notModified:
		e.lastChecked = c.now()
		c.mu.Lock()
		c.entries[family] = e
		c.mu.Unlock()
		return e.body
	default:
		e = entry{body: body, etag: etag, lastChecked: c.now()}
		c.mu.Lock()
		c.entries[family] = e
		c.mu.Unlock()
		return e.body
	}
}

// HTTPFetcher is the default Fetcher, issuing a conditional GET against a
// configured base URL per family.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Fetch implements Fetcher via a conditional HTTP GET.
func (f *HTTPFetcher) Fetch(ctx context.Context, family, etag string) (string, string, bool, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/"+family+".md", nil)
	if err != nil {
		return "", "", false, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return "", etag, true, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", false, err
	}
	return string(body), resp.Header.Get("ETag"), false, nil
}
