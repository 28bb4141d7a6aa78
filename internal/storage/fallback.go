package storage

import (
	"errors"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// quotaErrThreshold is how many quota failures a backend gets before the
	// preferred tier is downgraded underneath it.
	quotaErrThreshold = 3

	maxTransitionHistory = 50
)

// Transition records one downgrade of the preferred tier.
type Transition struct {
	From   Tier      `json:"from"`
	To     Tier      `json:"to"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Fallback executes get/set/remove against the backend tiers in a derived
// sequence: preferred first, then the other available persistent tier, then
// memory. The memory map is written before any persistent backend on every
// set, so memory never lags persistent state.
type Fallback struct {
	detector *Detector

	mu        sync.Mutex
	preferred Tier
	quotaErrs map[Tier]int
	history   []Transition
}

func NewFallback(detector *Detector) *Fallback {
	f := &Fallback{
		detector:  detector,
		preferred: TierMemory,
		quotaErrs: map[Tier]int{},
	}
	for _, t := range detector.AvailableTiers() {
		f.preferred = t
		break
	}
	return f
}

// Preferred returns the current preferred tier.
func (f *Fallback) Preferred() Tier {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preferred
}

// History returns a copy of the downgrade history, oldest first.
func (f *Fallback) History() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transition, len(f.history))
	copy(out, f.history)
	return out
}

// persistentSequence returns the persistent (non-memory) backends to try, in
// order: preferred first, then the other available persistent tier.
func (f *Fallback) persistentSequence() []Backend {
	f.mu.Lock()
	preferred := f.preferred
	f.mu.Unlock()

	var out []Backend
	seen := map[Tier]bool{}
	push := func(t Tier) {
		if t == TierMemory || seen[t] || !f.detector.Available(t) {
			return
		}
		if b, ok := f.detector.Backend(t); ok {
			out = append(out, b)
			seen[t] = true
		}
	}
	push(preferred)
	push(TierPrimary)
	push(TierSecondary)
	return out
}

func (f *Fallback) memory() Backend {
	b, _ := f.detector.Backend(TierMemory)
	return b
}

// Get reads key. Persistent backends are consulted first; memory only after
// they return absent or fail.
func (f *Fallback) Get(key string) Result {
	res := Result{}
	for _, b := range f.persistentSequence() {
		v, ok, err := safeGet(b, key)
		if err != nil {
			f.noteError(b.Tier(), err)
			res.FallbacksAttempted = append(res.FallbacksAttempted, b.Tier())
			continue
		}
		if ok {
			return Result{Success: true, Value: v, Found: true, Used: b.Tier(), FallbacksAttempted: res.FallbacksAttempted}
		}
		res.FallbacksAttempted = append(res.FallbacksAttempted, b.Tier())
	}
	if mem := f.memory(); mem != nil {
		if v, ok, _ := safeGet(mem, key); ok {
			return Result{Success: true, Value: v, Found: true, Used: TierMemory, FallbacksAttempted: res.FallbacksAttempted}
		}
	}
	// Absent everywhere is still a successful lookup.
	res.Success = true
	res.Used = TierMemory
	return res
}

// Set writes key. The memory map is updated unconditionally before any
// persistent backend is attempted; the operation therefore never fails.
func (f *Fallback) Set(key, value string) Result {
	res := Result{Success: true, Used: TierMemory}
	if mem := f.memory(); mem != nil {
		_ = safeSet(mem, key, value)
	}
	for _, b := range f.persistentSequence() {
		if err := safeSet(b, key, value); err != nil {
			f.noteError(b.Tier(), err)
			res.FallbacksAttempted = append(res.FallbacksAttempted, b.Tier())
			continue
		}
		res.Used = b.Tier()
		return res
	}
	return res
}

// Remove deletes key from every backend. It succeeds if any backend accepted
// the removal.
func (f *Fallback) Remove(key string) Result {
	res := Result{Used: TierMemory}
	for _, b := range f.persistentSequence() {
		if err := safeRemove(b, key); err != nil {
			f.noteError(b.Tier(), err)
			res.FallbacksAttempted = append(res.FallbacksAttempted, b.Tier())
			continue
		}
		if !res.Success {
			res.Used = b.Tier()
		}
		res.Success = true
	}
	if mem := f.memory(); mem != nil {
		_ = safeRemove(mem, key)
		res.Success = true
	}
	return res
}

// Clear empties every backend.
func (f *Fallback) Clear() Result {
	res := Result{Used: TierMemory}
	for _, b := range f.persistentSequence() {
		if err := safeClear(b); err != nil {
			f.noteError(b.Tier(), err)
			res.FallbacksAttempted = append(res.FallbacksAttempted, b.Tier())
			continue
		}
		if !res.Success {
			res.Used = b.Tier()
		}
		res.Success = true
	}
	if mem := f.memory(); mem != nil {
		_ = safeClear(mem)
		res.Success = true
	}
	return res
}

func (f *Fallback) noteError(tier Tier, err error) {
	if !isQuotaErr(err) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotaErrs[tier]++
	if f.quotaErrs[tier] < quotaErrThreshold || f.preferred != tier {
		return
	}
	next := downgradeOf(tier)
	f.history = append(f.history, Transition{
		From:   tier,
		To:     next,
		Reason: err.Error(),
		At:     time.Now().UTC(),
	})
	if len(f.history) > maxTransitionHistory {
		f.history = f.history[len(f.history)-maxTransitionHistory:]
	}
	f.preferred = next
	log.Warn("storage: downgrading preferred backend", "from", tier, "to", next)
}

func downgradeOf(tier Tier) Tier {
	switch tier {
	case TierPrimary:
		return TierSecondary
	default:
		return TierMemory
	}
}

// isQuotaErr classifies storage-exhaustion failures. Everything else is
// treated as transient and does not count toward a downgrade.
func isQuotaErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") || strings.Contains(msg, "no space")
}
