package sigstore

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveSignature(ctx, "sig-1", "proj-a", "antigravity", "prod", 0); err != nil {
		t.Fatalf("SaveSignature: %v", err)
	}

	rec, err := s.GetRecord(ctx, "sig-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.ProjectID != "proj-a" {
		t.Errorf("got project %q", rec.ProjectID)
	}
}

func TestIsValidForProject(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.SaveSignature(ctx, "sig-1", "proj-a", "antigravity", "prod", 0)

	if !s.IsValidForProject(ctx, "sig-1", "proj-a") {
		t.Error("expected valid for proj-a")
	}
	if s.IsValidForProject(ctx, "sig-1", "proj-b") {
		t.Error("expected invalid for proj-b")
	}
	if s.IsValidForProject(ctx, "unknown-sig", "proj-a") {
		t.Error("expected invalid for unknown signature")
	}
}

func TestGetRecord_ExpiresAfterTTL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	s.now = func() time.Time { return base }
	s.SaveSignature(ctx, "sig-1", "proj-a", "antigravity", "prod", 0)

	s.now = func() time.Time { return base.Add(TTL + time.Hour) }
	if _, err := s.GetRecord(ctx, "sig-1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestSaveSignature_EvictsLeastRecentlyUsedAtCapacity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < Capacity; i++ {
		t := base.Add(time.Duration(i) * time.Second)
		s.now = func() time.Time { return t }
		s.SaveSignature(ctx, sigName(i), "proj-a", "antigravity", "prod", 0)
	}

	s.now = func() time.Time { return base.Add(time.Duration(Capacity) * time.Second) }
	s.SaveSignature(ctx, "sig-overflow", "proj-a", "antigravity", "prod", 0)

	if _, err := s.GetRecord(ctx, sigName(0)); err != ErrNotFound {
		t.Errorf("expected oldest record evicted, got err=%v", err)
	}
	if _, err := s.GetRecord(ctx, "sig-overflow"); err != nil {
		t.Errorf("expected new record present, got err=%v", err)
	}
}

func sigName(i int) string {
	return "sig-" + strconv.Itoa(i)
}
