package store

import (
	"context"
	"testing"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/dedup"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFingerprintRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.HasFingerprint(ctx, "abc123")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Fatal("fingerprint should not exist yet")
	}

	if err := s.AddFingerprint(ctx, "abc123"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Idempotent.
	if err := s.AddFingerprint(ctx, "abc123"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	ok, err = s.HasFingerprint(ctx, "abc123")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Fatal("fingerprint should exist after add")
	}

	set, err := s.LoadFingerprints(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(set) != 1 {
		t.Fatalf("expected 1 fingerprint, got %d", len(set))
	}
	if !dedup.SessionSeen("abc123", set) {
		t.Fatal("loaded set must answer membership")
	}
}

func TestSampleKeyRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	keys := []dedup.SampleKey{
		{SessionID: "s1", Time: 0},
		{SessionID: "s1", Time: 0.5},
		{SessionID: "s2", Time: 0},
	}
	if err := s.AddSampleKeys(ctx, keys); err != nil {
		t.Fatalf("add keys: %v", err)
	}
	// Duplicate insert is ignored.
	if err := s.AddSampleKeys(ctx, keys[:1]); err != nil {
		t.Fatalf("re-add keys: %v", err)
	}

	set, err := s.LoadSampleKeys(ctx, "s1")
	if err != nil {
		t.Fatalf("load keys: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 keys for s1, got %d", len(set))
	}
	if !dedup.SampleSeen(dedup.SampleKey{SessionID: "s1", Time: 0.5}, set) {
		t.Fatal("expected key present")
	}
	if dedup.SampleSeen(dedup.SampleKey{SessionID: "s2", Time: 0}, set) {
		t.Fatal("s2 keys must not load for s1")
	}
}

func TestAddSampleKeysEmpty(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddSampleKeys(context.Background(), nil); err != nil {
		t.Fatalf("empty add must be a no-op: %v", err)
	}
}
