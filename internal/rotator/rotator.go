// Package rotator implements the account rotator (spec §4.5, C6): given a
// provider, model, and an ordered credential list, it selects the
// lowest-index account not presently cooled down, delegating availability
// tracking to internal/cooldown. Grounded on the locking and key-composition
// style of the teacher's pkg/registry.Registry, generalized from a
// provider-name map to a rotation-state map.
package rotator

import (
	"fmt"
	"sync"
	"time"

	"github.com/digitallysavvy/go-ai/internal/cooldown"
)

// Rotator selects accounts for a (provider, model) pair, tracking which
// indices have already been tried within the current attempt chain.
type Rotator struct {
	mu       sync.Mutex
	cooldown *cooldown.Manager
	tried    map[string]map[int]bool // chainID -> set of tried indices
}

// New creates a Rotator backed by cd for cool-down state.
func New(cd *cooldown.Manager) *Rotator {
	return &Rotator{
		cooldown: cd,
		tried:    make(map[string]map[int]bool),
	}
}

// Key builds the C5 cool-down key for a specific account index.
func Key(provider, model string, index int) string {
	return fmt.Sprintf("%s:%s:%d", provider, model, index)
}

// GetNextAvailable returns the lowest index in creds (by length) whose
// cool-down key is available and has not yet been tried within chainID, or
// -1 if none qualify. chainID scopes the "never revisit within one logical
// request" rule (spec §4.5); pass a value unique per inbound request, e.g.
// a request ID.
func (r *Rotator) GetNextAvailable(chainID, provider, model string, numCreds int) int {
	r.mu.Lock()
	tried := r.tried[chainID]
	r.mu.Unlock()

	for i := 0; i < numCreds; i++ {
		if tried != nil && tried[i] {
			continue
		}
		if r.cooldown.IsAvailable(Key(provider, model, i)) {
			return i
		}
	}
	return -1
}

// HasNext reports whether any index in [fromIndex, numCreds) is available
// and untried within chainID.
func (r *Rotator) HasNext(chainID, provider, model string, fromIndex, numCreds int) bool {
	r.mu.Lock()
	tried := r.tried[chainID]
	r.mu.Unlock()

	for i := fromIndex; i < numCreds; i++ {
		if tried != nil && tried[i] {
			continue
		}
		if r.cooldown.IsAvailable(Key(provider, model, i)) {
			return true
		}
	}
	return false
}

// MarkTried records that index has been attempted within chainID, so a
// subsequent GetNextAvailable call in the same chain will not return it
// again even if its cool-down has not yet been set.
func (r *Rotator) MarkTried(chainID string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tried[chainID] == nil {
		r.tried[chainID] = make(map[int]bool)
	}
	r.tried[chainID][index] = true
}

// ForgetChain drops the tried-index bookkeeping for chainID, called once a
// request's attempt loop finishes.
func (r *Rotator) ForgetChain(chainID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tried, chainID)
}

// MarkRateLimited delegates to the cool-down manager for a specific account.
func (r *Rotator) MarkRateLimited(provider, model string, index int, retryAfter *time.Duration) time.Duration {
	return r.cooldown.MarkRateLimited(Key(provider, model, index), retryAfter)
}

// AreAllRateLimited reports whether every index in [0, numCreds) is
// currently cooled down.
func (r *Rotator) AreAllRateLimited(provider, model string, numCreds int) bool {
	for i := 0; i < numCreds; i++ {
		if r.cooldown.IsAvailable(Key(provider, model, i)) {
			return false
		}
	}
	return numCreds > 0
}
