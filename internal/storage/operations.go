package storage

import (
	"strings"
	"sync"
	"time"
)

const (
	maxKeyLen   = 1000
	maxValueLen = 5 << 20 // 5 MiB

	// latencyEMAWeight is the weight of the newest sample in the moving
	// average.
	latencyEMAWeight = 0.2
)

// Manager is the public face of the persistence layer: validated get/set/
// remove/clear with tiered fallback and aggregated diagnostics.
//
// All failures are non-fatal. A set succeeds if any backend, memory included,
// accepted the write.
type Manager struct {
	detector *Detector
	fallback *Fallback

	mu        sync.Mutex
	ops       map[string]int64 // per-operation counters
	rejected  int64
	latencyMs float64
}

func NewManager(detector *Detector) *Manager {
	return &Manager{
		detector: detector,
		fallback: NewFallback(detector),
		ops:      map[string]int64{},
	}
}

// DefaultManager wires the conventional three tiers: durable diskv under dir,
// session diskv under the OS temp dir, and memory.
func DefaultManager(dir string) *Manager {
	return NewManager(NewDetector(
		NewPrimaryBackend(dir),
		NewSessionBackend(),
		NewMemoryBackend(),
	))
}

// Detector exposes probe results (availability, restricted environment).
func (m *Manager) Detector() *Detector { return m.detector }

// Fallback exposes the tier-selection state (preferred tier, history).
func (m *Manager) Fallback() *Fallback { return m.fallback }

// Get returns the value stored under key, if any.
func (m *Manager) Get(key string) (string, bool) {
	res := m.GetResult(key)
	return res.Value, res.Found
}

// GetResult is Get with full fallback diagnostics.
func (m *Manager) GetResult(key string) Result {
	if !validKey(key) {
		m.reject("get")
		return Result{}
	}
	start := time.Now()
	res := m.fallback.Get(key)
	m.record("get", start)
	return res
}

// Set stores value under key. It reports false only when validation rejects
// the inputs; backend failures degrade to lower tiers instead.
func (m *Manager) Set(key, value string) bool {
	return m.SetResult(key, value).Success
}

// SetResult is Set with full fallback diagnostics.
func (m *Manager) SetResult(key, value string) Result {
	if !validKey(key) || len(value) > maxValueLen {
		m.reject("set")
		return Result{}
	}
	start := time.Now()
	res := m.fallback.Set(key, value)
	m.record("set", start)
	return res
}

// Remove deletes key from every tier.
func (m *Manager) Remove(key string) bool {
	if !validKey(key) {
		m.reject("remove")
		return false
	}
	start := time.Now()
	res := m.fallback.Remove(key)
	m.record("remove", start)
	return res.Success
}

// Clear empties every tier.
func (m *Manager) Clear() bool {
	start := time.Now()
	res := m.fallback.Clear()
	m.record("clear", start)
	return res.Success
}

// Info returns the aggregated diagnostics map: availability per tier,
// preferred tier, operation counters, rejection count, latency EMA and the
// downgrade history.
func (m *Manager) Info() map[string]any {
	m.mu.Lock()
	ops := make(map[string]int64, len(m.ops))
	for k, v := range m.ops {
		ops[k] = v
	}
	rejected := m.rejected
	latency := m.latencyMs
	m.mu.Unlock()

	avail := map[string]bool{}
	for _, t := range []Tier{TierPrimary, TierSecondary, TierMemory} {
		avail[string(t)] = m.detector.Available(t)
	}

	return map[string]any{
		"available":        avail,
		"restricted":       m.detector.Restricted(),
		"preferred":        string(m.fallback.Preferred()),
		"operations":       ops,
		"rejected":         rejected,
		"avgLatencyMs":     latency,
		"downgradeHistory": m.fallback.History(),
	}
}

func validKey(key string) bool {
	if key == "" || len(key) > maxKeyLen {
		return false
	}
	return !strings.ContainsAny(key, "\x00�")
}

func (m *Manager) reject(op string) {
	m.mu.Lock()
	m.rejected++
	m.ops[op+"_rejected"]++
	m.mu.Unlock()
}

func (m *Manager) record(op string, start time.Time) {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	m.mu.Lock()
	m.ops[op]++
	if m.latencyMs == 0 {
		m.latencyMs = elapsed
	} else {
		m.latencyMs = latencyEMAWeight*elapsed + (1-latencyEMAWeight)*m.latencyMs
	}
	m.mu.Unlock()
}
