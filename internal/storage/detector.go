package storage

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	probeKey   = "__autotodo_probe__"
	probeValue = "probe"

	// restrictedProbeSize is the payload used to sniff quota-restricted
	// environments (private mode and similar give you a store that works
	// but rejects anything of moderate size).
	restrictedProbeSize = 1 << 20 // ~1 MiB
)

// Detector probes backend availability and caches the results per process.
//
// A backend is available iff a write-then-read-then-remove round trip of a
// fixed probe key succeeds.
type Detector struct {
	mu       sync.Mutex
	backends map[Tier]Backend

	probed     bool
	available  map[Tier]bool
	restricted bool
}

func NewDetector(backends ...Backend) *Detector {
	m := make(map[Tier]Backend, len(backends))
	for _, b := range backends {
		if b != nil {
			m[b.Tier()] = b
		}
	}
	return &Detector{backends: m}
}

// Backend returns the backend registered for tier, if any.
func (d *Detector) Backend(tier Tier) (Backend, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.backends[tier]
	return b, ok
}

// Available reports whether the tier passed its probe. Results are cached;
// use Refresh to re-probe.
func (d *Detector) Available(tier Tier) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureProbedLocked()
	return d.available[tier]
}

// AvailableTiers returns the available tiers in preference order.
func (d *Detector) AvailableTiers() []Tier {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureProbedLocked()
	var out []Tier
	for _, t := range []Tier{TierPrimary, TierSecondary, TierMemory} {
		if d.available[t] {
			out = append(out, t)
		}
	}
	return out
}

// Restricted reports whether the primary backend rejected the moderate-size
// quota probe. Callers surface this through the notifier; correctness does
// not depend on it.
func (d *Detector) Restricted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ensureProbedLocked()
	return d.restricted
}

// Refresh invalidates the cached probe results.
func (d *Detector) Refresh() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.probed = false
	d.available = nil
	d.restricted = false
}

func (d *Detector) ensureProbedLocked() {
	if d.probed {
		return
	}
	d.available = make(map[Tier]bool, len(d.backends))
	for tier, b := range d.backends {
		d.available[tier] = roundTrip(b, probeValue)
	}
	if primary, ok := d.backends[TierPrimary]; ok && d.available[TierPrimary] {
		if !roundTrip(primary, strings.Repeat("x", restrictedProbeSize)) {
			d.restricted = true
			log.Warn("storage: primary backend rejected quota probe; treating environment as restricted")
		}
	}
	d.probed = true
}

func roundTrip(b Backend, value string) bool {
	if err := safeSet(b, probeKey, value); err != nil {
		return false
	}
	got, ok, err := safeGet(b, probeKey)
	if err != nil || !ok || got != value {
		_ = safeRemove(b, probeKey)
		return false
	}
	return safeRemove(b, probeKey) == nil
}
