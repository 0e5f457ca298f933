package rotator

import (
	"testing"
	"time"

	"github.com/digitallysavvy/go-ai/internal/cooldown"
)

func newCooldown() *cooldown.Manager {
	return cooldown.New()
}

func TestRotator_GetNextAvailable_PrefersLowestIndex(t *testing.T) {
	r := New(newCooldown())
	idx := r.GetNextAvailable("chain-1", "openai", "gpt-4", 3)
	if idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
}

func TestRotator_GetNextAvailable_SkipsCooledDown(t *testing.T) {
	r := New(newCooldown())
	r.MarkRateLimited("openai", "gpt-4", 0, nil)

	idx := r.GetNextAvailable("chain-1", "openai", "gpt-4", 3)
	if idx != 1 {
		t.Errorf("expected index 1 after 0 is cooled down, got %d", idx)
	}
}

func TestRotator_MonotonicWithinChain(t *testing.T) {
	r := New(newCooldown())

	idx := r.GetNextAvailable("chain-1", "openai", "gpt-4", 2)
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	r.MarkTried("chain-1", idx)

	idx2 := r.GetNextAvailable("chain-1", "openai", "gpt-4", 2)
	if idx2 != 1 {
		t.Errorf("expected index 1 after 0 marked tried within chain, got %d", idx2)
	}

	// A different chain should not be affected by chain-1's tried set.
	idxOther := r.GetNextAvailable("chain-2", "openai", "gpt-4", 2)
	if idxOther != 0 {
		t.Errorf("expected fresh chain to prefer index 0, got %d", idxOther)
	}
}

func TestRotator_AreAllRateLimited(t *testing.T) {
	r := New(newCooldown())
	if r.AreAllRateLimited("openai", "gpt-4", 2) {
		t.Fatal("expected not all rate limited initially")
	}
	r.MarkRateLimited("openai", "gpt-4", 0, nil)
	r.MarkRateLimited("openai", "gpt-4", 1, nil)
	if !r.AreAllRateLimited("openai", "gpt-4", 2) {
		t.Error("expected all rate limited after marking every index")
	}
}

func TestRotator_HasNext(t *testing.T) {
	r := New(newCooldown())
	r.MarkRateLimited("openai", "gpt-4", 0, nil)
	if !r.HasNext("chain-1", "openai", "gpt-4", 0, 2) {
		t.Error("expected a next available account at index 1")
	}
	r.MarkRateLimited("openai", "gpt-4", 1, nil)
	if r.HasNext("chain-1", "openai", "gpt-4", 0, 2) {
		t.Error("expected no next available account once both are cooled down")
	}
}

func TestRotator_ForgetChain(t *testing.T) {
	r := New(newCooldown())
	r.MarkTried("chain-1", 0)
	r.ForgetChain("chain-1")
	idx := r.GetNextAvailable("chain-1", "openai", "gpt-4", 1)
	if idx != 0 {
		t.Errorf("expected index 0 available again after forgetting chain, got %d", idx)
	}
}

func TestRotator_MarkRateLimited_ReturnsDuration(t *testing.T) {
	r := New(newCooldown())
	ra := 3 * time.Second
	d := r.MarkRateLimited("openai", "gpt-4", 0, &ra)
	if d < ra {
		t.Errorf("expected returned duration >= retry-after, got %v", d)
	}
}
