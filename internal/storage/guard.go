package storage

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"autotodo/internal/model"
)

// Risk classifies how close the primary store is to an inactivity eviction.
type Risk string

const (
	RiskSafe     Risk = "safe"
	RiskWarning  Risk = "warning"
	RiskCritical Risk = "critical"
)

const (
	// Eviction-style tracking prevention conventionally clears storage after
	// seven days of inactivity; warn a day ahead.
	warningAge  = 6 * 24 * time.Hour
	criticalAge = 7 * 24 * time.Hour

	// heartbeatMinInterval throttles activity-timestamp writes.
	heartbeatMinInterval = time.Minute

	// warnMinInterval throttles the user-facing eviction warning.
	warnMinInterval = 24 * time.Hour

	defaultCheckInterval = time.Hour
)

// Grantor asks the platform for a durable-storage grant. Implementations are
// optional; a nil grantor means the platform does not expose one.
type Grantor interface {
	RequestPersist(ctx context.Context) (bool, error)
}

// Guard mitigates inactivity-driven eviction of the primary store: it keeps a
// throttled activity heartbeat, classifies eviction risk, and maintains a
// secondary backup of the todos slot in an independent store.
//
// The guard is an optional collaborator; nothing in the core depends on it
// for correctness.
type Guard struct {
	manager *Manager
	backup  BackupStore // nil => fall back to a distinct primary slot
	grantor Grantor
	notify  func(msg string)
	now     func() time.Time

	mu             sync.Mutex
	lastHeartbeat  time.Time
	persistGranted bool
}

type GuardOpts struct {
	Backup  BackupStore
	Grantor Grantor
	// Notify receives user-facing eviction warnings. May be nil.
	Notify func(msg string)
	// Now overrides the clock (tests).
	Now func() time.Time
}

func NewGuard(manager *Manager, opts GuardOpts) *Guard {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Guard{
		manager: manager,
		backup:  opts.Backup,
		grantor: opts.Grantor,
		notify:  opts.Notify,
		now:     now,
	}
}

// Start runs the periodic risk check until ctx is cancelled. The durable
// grant is requested here, asynchronously to construction: availability
// information is usable immediately, durability upgrades arrive later and
// only affect backup placement.
func (g *Guard) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	go func() {
		if g.grantor != nil {
			granted, err := g.grantor.RequestPersist(ctx)
			if err != nil {
				log.Debug("storage: persistent grant request failed", "err", err)
			}
			g.mu.Lock()
			g.persistGranted = granted && err == nil
			g.mu.Unlock()
		}
		g.Check(ctx)

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				g.Check(ctx)
			}
		}
	}()
}

// RecordActivity writes the last-activity timestamp, throttled to at most one
// write per minute.
func (g *Guard) RecordActivity() {
	now := g.now()
	g.mu.Lock()
	if now.Sub(g.lastHeartbeat) < heartbeatMinInterval {
		g.mu.Unlock()
		return
	}
	g.lastHeartbeat = now
	g.mu.Unlock()

	g.manager.Set(SlotLastActivity, strconv.FormatInt(now.UnixMilli(), 10))
}

// LastActivity returns the recorded last-activity time, if any.
func (g *Guard) LastActivity() (time.Time, bool) {
	v, ok := g.manager.Get(SlotLastActivity)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Risk classifies the age of the last-activity timestamp.
// No timestamp yet reads as safe (nothing to evict).
func (g *Guard) Risk() Risk {
	last, ok := g.LastActivity()
	if !ok {
		return RiskSafe
	}
	age := g.now().Sub(last)
	switch {
	case age >= criticalAge:
		return RiskCritical
	case age >= warningAge:
		return RiskWarning
	default:
		return RiskSafe
	}
}

// Check runs one risk classification: at warning or above it refreshes the
// backup and (throttled) surfaces a warning.
func (g *Guard) Check(ctx context.Context) Risk {
	risk := g.Risk()
	if risk == RiskSafe {
		// Keep the backup reasonably fresh even when safe.
		g.BackupNow(ctx)
		return risk
	}
	g.BackupNow(ctx)
	g.maybeWarn(risk)
	return risk
}

// BackupNow writes the current todos slot into the independent backup store
// (or, without one, under a distinct primary key). Best effort.
func (g *Guard) BackupNow(ctx context.Context) {
	raw, ok := g.manager.Get(SlotTodos)
	if !ok {
		return
	}
	var todos []model.Todo
	if err := json.Unmarshal([]byte(raw), &todos); err != nil {
		log.Warn("storage: todos slot is not valid JSON; skipping backup", "err", err)
		return
	}
	blob, err := json.Marshal(model.Backup{
		Timestamp: g.now().UnixMilli(),
		Version:   model.BackupVersion,
		Data:      model.BackupData{Todos: todos},
	})
	if err != nil {
		return
	}
	if g.backup != nil {
		if err := g.backup.Put(ctx, SlotTodos, string(blob)); err != nil {
			log.Warn("storage: durable backup write failed", "err", err)
			g.manager.Set(SlotBackupData, string(blob))
		}
		return
	}
	g.manager.Set(SlotBackupData, string(blob))
}

// Restore returns the todos payload from the most recent backup, if one
// exists. The returned string is the JSON array for the "todos" slot.
func (g *Guard) Restore(ctx context.Context) (string, bool) {
	var blob string
	if g.backup != nil {
		if v, ok, err := g.backup.Latest(ctx, SlotTodos); err == nil && ok {
			blob = v
		}
	}
	if blob == "" {
		v, ok := g.manager.Get(SlotBackupData)
		if !ok {
			return "", false
		}
		blob = v
	}
	var b model.Backup
	if err := json.Unmarshal([]byte(blob), &b); err != nil {
		log.Warn("storage: backup blob is not valid JSON", "err", err)
		return "", false
	}
	raw, err := json.Marshal(b.Data.Todos)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Info reports the guard's diagnostic state.
func (g *Guard) Info() map[string]any {
	g.mu.Lock()
	granted := g.persistGranted
	g.mu.Unlock()

	out := map[string]any{
		"risk":           string(g.Risk()),
		"persistGranted": granted,
		"durableBackup":  g.backup != nil,
	}
	if last, ok := g.LastActivity(); ok {
		out["lastActivity"] = last.UTC().Format(time.RFC3339)
	}
	return out
}

func (g *Guard) maybeWarn(risk Risk) {
	if g.notify == nil {
		return
	}
	now := g.now()
	if v, ok := g.manager.Get(SlotITPWarning); ok {
		if ms, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			if now.Sub(time.UnixMilli(ms)) < warnMinInterval {
				return
			}
		}
	}
	g.manager.Set(SlotITPWarning, strconv.FormatInt(now.UnixMilli(), 10))
	if risk == RiskCritical {
		g.notify("Local storage may have been evicted after inactivity; a backup copy is kept and will be restored automatically.")
		return
	}
	g.notify("Local storage will be evicted soon due to inactivity; open the app regularly or export your todos.")
}
