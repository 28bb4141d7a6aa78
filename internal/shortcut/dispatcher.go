package shortcut

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// ContextGlobal is the implicit always-active context. Non-global contexts
// are consulted first at dispatch time.
const ContextGlobal = "global"

// maxContexts caps context registration.
const maxContexts = 50

// maxEntryErrors bounds the per-entry action failure log.
const maxEntryErrors = 10

// Event is a key event as seen by the dispatcher. PreventDefault, when
// non-nil, suppresses the host's default handling; it is invoked before the
// matched action runs.
type Event struct {
	Key            string
	Ctrl           bool
	Alt            bool
	Shift          bool
	PreventDefault func()
}

// Entry is one registered shortcut.
type Entry struct {
	Key            string
	Ctrl           bool
	Alt            bool
	Shift          bool
	Context        string // "" means global
	Action         func()
	PreventDefault bool
	Description    string
	Category       string

	// Runtime stats, owned by the dispatcher.
	triggerCount  int
	lastTriggered time.Time
	errorLog      []actionError
}

type actionError struct {
	At  time.Time
	Err string
}

// Dispatcher resolves key events to at most one registered action, scoped by
// context predicates evaluated at dispatch time.
type Dispatcher struct {
	mu         sync.Mutex
	entries    map[string]*Entry // canonical combo -> entry
	contexts   map[string]func() bool
	contextSeq []string // non-global contexts in registration (priority) order
	cache      *lookupCache
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		entries:  map[string]*Entry{},
		contexts: map[string]func() bool{},
		cache:    newLookupCache(),
	}
	d.contexts[ContextGlobal] = func() bool { return true }
	return d
}

// RegisterContext binds name to a predicate deciding whether the context is
// active. Registration beyond the cap fails.
func (d *Dispatcher) RegisterContext(name string, predicate func() bool) error {
	if name == "" || predicate == nil {
		return errors.New("shortcut: context needs a name and a predicate")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.contexts[name]; !exists && len(d.contexts) >= maxContexts {
		return fmt.Errorf("shortcut: context cap reached (%d)", maxContexts)
	}
	if _, exists := d.contexts[name]; !exists && name != ContextGlobal {
		d.contextSeq = append(d.contextSeq, name)
	}
	d.contexts[name] = predicate
	return nil
}

// Register validates and inserts entry. A duplicate (context, modifiers, key)
// tuple logs a conflict warning and the new entry wins.
func (d *Dispatcher) Register(entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return errors.New("shortcut: entry needs a key")
	}
	if entry.Action == nil {
		return errors.New("shortcut: entry needs an action")
	}
	if entry.Context == "" {
		entry.Context = ContextGlobal
	}

	if entry.Ctrl && entry.Alt && entry.Shift {
		log.Warn("shortcut: three-modifier combo is hard to type", "key", entry.Key)
	}
	if isReservedCombo(entry.Key, entry.Ctrl, entry.Alt, entry.Shift) {
		log.Warn("shortcut: combo is usually reserved by the host", "key", entry.Key)
	}

	combo := d.cache.canonical(entry.Context, entry.Key, entry.Ctrl, entry.Alt, entry.Shift)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.contexts[entry.Context]; !exists {
		log.Warn("shortcut: entry registered for unknown context", "context", entry.Context, "key", entry.Key)
	}
	if prev, exists := d.entries[combo]; exists {
		log.Warn("shortcut: conflicting registration, last write wins",
			"combo", combo, "old", prev.Description, "new", entry.Description)
	}
	d.entries[combo] = entry
	return nil
}

// Unregister removes entry if present.
func (d *Dispatcher) Unregister(entry *Entry) {
	if entry == nil {
		return
	}
	ctx := entry.Context
	if ctx == "" {
		ctx = ContextGlobal
	}
	combo := d.cache.canonical(ctx, entry.Key, entry.Ctrl, entry.Alt, entry.Shift)
	d.mu.Lock()
	if d.entries[combo] == entry {
		delete(d.entries, combo)
	}
	d.mu.Unlock()
}

// Clear removes every entry. Context registrations survive.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	d.entries = map[string]*Entry{}
	d.mu.Unlock()
}

// Entries returns a snapshot of the registered entries.
func (d *Dispatcher) Entries() []*Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	return out
}

// Dispatch resolves the event against each active context in priority order
// (non-global first, then global) and executes the first matching entry. It
// reports whether an entry ran. Action panics are caught and recorded; they
// never propagate to the event loop.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.Lock()
	order := make([]string, 0, len(d.contextSeq)+1)
	for _, name := range d.contextSeq {
		if pred := d.contexts[name]; pred != nil && pred() {
			order = append(order, name)
		}
	}
	order = append(order, ContextGlobal)

	var matched *Entry
	for _, ctx := range order {
		combo := d.cache.canonical(ctx, ev.Key, ev.Ctrl, ev.Alt, ev.Shift)
		if e, ok := d.entries[combo]; ok {
			matched = e
			break
		}
	}
	if matched == nil {
		d.mu.Unlock()
		return false
	}
	matched.triggerCount++
	matched.lastTriggered = time.Now()
	d.mu.Unlock()

	if matched.PreventDefault && ev.PreventDefault != nil {
		ev.PreventDefault()
	}
	d.invoke(matched)
	return true
}

func (d *Dispatcher) invoke(e *Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("shortcut: action failed", "key", e.Key, "context", e.Context, "err", r)
			d.mu.Lock()
			e.errorLog = append(e.errorLog, actionError{At: time.Now(), Err: fmt.Sprint(r)})
			if len(e.errorLog) > maxEntryErrors {
				e.errorLog = e.errorLog[len(e.errorLog)-maxEntryErrors:]
			}
			d.mu.Unlock()
		}
	}()
	e.Action()
}
