package storage

import (
	"errors"
	"testing"
)

// tierBackend wraps a backend under a different tier label.
type tierBackend struct {
	Backend
	tier Tier
}

func (b tierBackend) Tier() Tier { return b.tier }

// quotaBackend passes the availability probe but rejects every other write
// with a quota error, mimicking a store that exists yet has no room.
type quotaBackend struct {
	tier  Tier
	inner Backend
}

func newQuotaBackend(tier Tier) *quotaBackend {
	return &quotaBackend{tier: tier, inner: NewMemoryBackend()}
}

func (b *quotaBackend) Tier() Tier { return b.tier }

func (b *quotaBackend) Get(key string) (string, bool, error) { return b.inner.Get(key) }

func (b *quotaBackend) Set(key, value string) error {
	if key == probeKey {
		return b.inner.Set(key, value)
	}
	return errors.New("quota exceeded")
}

func (b *quotaBackend) Remove(key string) error { return b.inner.Remove(key) }
func (b *quotaBackend) Keys() ([]string, error) { return b.inner.Keys() }
func (b *quotaBackend) Clear() error            { return b.inner.Clear() }

func newTierMemory(tier Tier) Backend {
	return tierBackend{Backend: NewMemoryBackend(), tier: tier}
}

func TestFallbackSetPrefersPrimary(t *testing.T) {
	d := NewDetector(newTierMemory(TierPrimary), newTierMemory(TierSecondary), NewMemoryBackend())
	f := NewFallback(d)

	res := f.Set("k", "v")
	if !res.Success {
		t.Fatalf("set failed: %+v", res)
	}
	if res.Used != TierPrimary {
		t.Fatalf("expected primary, used %s", res.Used)
	}
	if len(res.FallbacksAttempted) != 0 {
		t.Fatalf("expected no fallbacks, got %v", res.FallbacksAttempted)
	}

	got := f.Get("k")
	if !got.Found || got.Value != "v" {
		t.Fatalf("get after set: %+v", got)
	}
	if got.Used != TierPrimary {
		t.Fatalf("expected get from primary, used %s", got.Used)
	}
}

func TestFallbackSetFallsBackToSecondary(t *testing.T) {
	d := NewDetector(newQuotaBackend(TierPrimary), newTierMemory(TierSecondary), NewMemoryBackend())
	f := NewFallback(d)

	res := f.Set("k", "v")
	if !res.Success {
		t.Fatalf("set failed: %+v", res)
	}
	if res.Used != TierSecondary {
		t.Fatalf("expected secondary, used %s", res.Used)
	}
	if len(res.FallbacksAttempted) != 1 || res.FallbacksAttempted[0] != TierPrimary {
		t.Fatalf("expected primary in fallbacks, got %v", res.FallbacksAttempted)
	}

	got := f.Get("k")
	if !got.Found || got.Value != "v" {
		t.Fatalf("get after fallback set: %+v", got)
	}
}

func TestFallbackSetNeverFails(t *testing.T) {
	// Both persistent tiers reject writes; memory still takes it.
	d := NewDetector(newQuotaBackend(TierPrimary), newQuotaBackend(TierSecondary), NewMemoryBackend())
	f := NewFallback(d)

	res := f.Set("k", "v")
	if !res.Success {
		t.Fatalf("set must not fail: %+v", res)
	}
	if res.Used != TierMemory {
		t.Fatalf("expected memory, used %s", res.Used)
	}

	got := f.Get("k")
	if !got.Found || got.Value != "v" || got.Used != TierMemory {
		t.Fatalf("expected value from memory, got %+v", got)
	}
}

func TestFallbackGetAbsentEverywhereIsSuccess(t *testing.T) {
	d := NewDetector(newTierMemory(TierPrimary), NewMemoryBackend())
	f := NewFallback(d)

	res := f.Get("missing")
	if !res.Success {
		t.Fatalf("absent lookup should still succeed: %+v", res)
	}
	if res.Found {
		t.Fatalf("expected not found")
	}
}

func TestFallbackDowngradesAfterRepeatedQuotaErrors(t *testing.T) {
	d := NewDetector(newQuotaBackend(TierPrimary), newTierMemory(TierSecondary), NewMemoryBackend())
	f := NewFallback(d)

	if f.Preferred() != TierPrimary {
		t.Fatalf("expected primary preferred initially, got %s", f.Preferred())
	}
	for i := 0; i < quotaErrThreshold; i++ {
		f.Set("k", "v")
	}
	if f.Preferred() != TierSecondary {
		t.Fatalf("expected downgrade to secondary, got %s", f.Preferred())
	}

	hist := f.History()
	if len(hist) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(hist))
	}
	if hist[0].From != TierPrimary || hist[0].To != TierSecondary {
		t.Fatalf("unexpected transition: %+v", hist[0])
	}
	if hist[0].Reason == "" || hist[0].At.IsZero() {
		t.Fatalf("transition missing reason/timestamp: %+v", hist[0])
	}
}

func TestFallbackRemoveClearsAllTiers(t *testing.T) {
	d := NewDetector(newTierMemory(TierPrimary), newTierMemory(TierSecondary), NewMemoryBackend())
	f := NewFallback(d)

	f.Set("k", "v")
	res := f.Remove("k")
	if !res.Success {
		t.Fatalf("remove failed: %+v", res)
	}
	if got := f.Get("k"); got.Found {
		t.Fatalf("expected key gone, got %+v", got)
	}
}
