package storage

import (
	"errors"
	"testing"
)

// deadBackend fails every operation.
type deadBackend struct{ tier Tier }

func (b deadBackend) Tier() Tier                       { return b.tier }
func (b deadBackend) Get(string) (string, bool, error) { return "", false, errors.New("dead") }
func (b deadBackend) Set(string, string) error         { return errors.New("dead") }
func (b deadBackend) Remove(string) error              { return errors.New("dead") }
func (b deadBackend) Keys() ([]string, error)          { return nil, errors.New("dead") }
func (b deadBackend) Clear() error                     { return errors.New("dead") }

func TestDetectorProbesRoundTrip(t *testing.T) {
	d := NewDetector(
		tierBackend{Backend: NewPrimaryBackend(t.TempDir()), tier: TierPrimary},
		deadBackend{tier: TierSecondary},
		NewMemoryBackend(),
	)

	if !d.Available(TierPrimary) {
		t.Fatalf("expected primary available")
	}
	if d.Available(TierSecondary) {
		t.Fatalf("expected secondary unavailable")
	}
	if !d.Available(TierMemory) {
		t.Fatalf("expected memory available")
	}

	tiers := d.AvailableTiers()
	if len(tiers) != 2 || tiers[0] != TierPrimary || tiers[1] != TierMemory {
		t.Fatalf("unexpected tiers: %v", tiers)
	}
}

func TestDetectorProbeLeavesNoResidue(t *testing.T) {
	b := NewPrimaryBackend(t.TempDir())
	d := NewDetector(b)
	d.Available(TierPrimary)

	keys, err := b.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("probe left keys behind: %v", keys)
	}
}

// panicBackend panics on writes; the probe must treat it as unavailable
// rather than crashing.
type panicBackend struct{ tier Tier }

func (b panicBackend) Tier() Tier                       { return b.tier }
func (b panicBackend) Get(string) (string, bool, error) { panic("boom") }
func (b panicBackend) Set(string, string) error         { panic("boom") }
func (b panicBackend) Remove(string) error              { panic("boom") }
func (b panicBackend) Keys() ([]string, error)          { panic("boom") }
func (b panicBackend) Clear() error                     { panic("boom") }

func TestDetectorSurvivesPanickingBackend(t *testing.T) {
	d := NewDetector(panicBackend{tier: TierPrimary}, NewMemoryBackend())
	if d.Available(TierPrimary) {
		t.Fatalf("expected panicking backend to be unavailable")
	}
	if !d.Available(TierMemory) {
		t.Fatalf("expected memory available")
	}
}

func TestDetectorRefreshReprobes(t *testing.T) {
	d := NewDetector(deadBackend{tier: TierPrimary}, NewMemoryBackend())
	if d.Available(TierPrimary) {
		t.Fatalf("expected primary unavailable")
	}
	d.Refresh()
	// Still dead after refresh; the point is that re-probing happens and
	// yields a consistent answer instead of stale cache state.
	if d.Available(TierPrimary) {
		t.Fatalf("expected primary unavailable after refresh")
	}
}
