package todo

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"autotodo/internal/model"
	"autotodo/internal/storage"
)

// Store owns the in-memory todo collection. Insertion order is the only
// ordering; new todos are prepended. Every mutation is written through to the
// "todos" slot; a failed write never rolls back memory (within a session the
// collection is canonical).
type Store struct {
	storage *storage.Manager
	guard   *storage.Guard // optional

	mu    sync.Mutex
	todos []model.Todo
	now   func() time.Time
}

func NewStore(m *storage.Manager, guard *storage.Guard) *Store {
	return &Store{
		storage: m,
		guard:   guard,
		now:     time.Now,
	}
}

// wireTodo detects legacy entries: archived was added after the initial
// release, so older payloads omit it.
type wireTodo struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Archived  *bool     `json:"archived"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Load reads the todos slot, migrating legacy entries (missing archived =>
// false). A missing slot consults the guard's backup. Parse or validation
// failures yield an empty collection with a logged warning; nothing escapes
// to the caller.
func (s *Store) Load(ctx context.Context) {
	raw, ok := s.storage.Get(storage.SlotTodos)
	if !ok && s.guard != nil {
		if restored, found := s.guard.Restore(ctx); found {
			log.Info("todos slot missing; restored from backup")
			raw, ok = restored, true
		}
	}
	if !ok {
		s.mu.Lock()
		s.todos = []model.Todo{}
		s.mu.Unlock()
		return
	}

	todos, migrated, err := parseTodos([]byte(raw))
	if err != nil {
		log.Warn("discarding unreadable todos slot", "err", err)
		todos = []model.Todo{}
	}

	s.mu.Lock()
	s.todos = todos
	s.mu.Unlock()

	if migrated > 0 {
		log.Info("migrated legacy todos", "count", migrated)
		// Re-serialize promptly so the slot carries the migrated shape.
		s.persist()
	}
}

func parseTodos(raw []byte) ([]model.Todo, int, error) {
	if err := validateTodosPayload(raw); err != nil {
		return nil, 0, err
	}
	var wire []wireTodo
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, 0, err
	}
	out := make([]model.Todo, 0, len(wire))
	migrated := 0
	for _, w := range wire {
		archived := false
		if w.Archived != nil {
			archived = *w.Archived
		} else {
			migrated++
		}
		out = append(out, model.Todo{
			ID:        w.ID,
			Text:      w.Text,
			Completed: w.Completed,
			Archived:  archived,
			CreatedAt: w.CreatedAt,
			UpdatedAt: w.UpdatedAt,
		})
	}
	return out, migrated, nil
}

// Add creates a todo from text, prepends it and persists.
func (s *Store) Add(text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, ErrEmptyText
	}

	s.mu.Lock()
	id := newID(s.idExistsLocked)
	now := s.now().UTC()
	t := model.Todo{
		ID:        id,
		Text:      text,
		Completed: false,
		Archived:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.todos = append([]model.Todo{t}, s.todos...)
	s.mu.Unlock()

	s.persist()
	return t, nil
}

// Get returns the todo with the given id.
func (s *Store) Get(id string) (model.Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.todos {
		if t.ID == id {
			return t, true
		}
	}
	return model.Todo{}, false
}

// Update replaces the todo's text and refreshes updatedAt.
func (s *Store) Update(id, text string) (model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Todo{}, ErrEmptyText
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Todo{}, NotFoundError{ID: id}
	}
	s.todos[i].Text = text
	s.todos[i].UpdatedAt = s.now().UTC()
	t := s.todos[i]
	s.mu.Unlock()

	s.persist()
	return t, nil
}

// ToggleComplete flips the completed flag.
func (s *Store) ToggleComplete(id string) (model.Todo, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Todo{}, false
	}
	s.todos[i].Completed = !s.todos[i].Completed
	s.todos[i].UpdatedAt = s.now().UTC()
	t := s.todos[i]
	s.mu.Unlock()

	s.persist()
	return t, true
}

// Delete removes the todo. It reports whether a removal occurred.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	s.mu.Unlock()

	s.persist()
	return true
}

// SetArchived sets the archived flag. Archiving is unconditional: a todo does
// not have to be completed first.
func (s *Store) SetArchived(id string, archived bool) (model.Todo, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Todo{}, false
	}
	if s.todos[i].Archived != archived {
		s.todos[i].Archived = archived
		s.todos[i].UpdatedAt = s.now().UTC()
	}
	t := s.todos[i]
	s.mu.Unlock()

	s.persist()
	return t, true
}

func (s *Store) Archive(id string) (model.Todo, bool)   { return s.SetArchived(id, true) }
func (s *Store) Unarchive(id string) (model.Todo, bool) { return s.SetArchived(id, false) }

// ArchiveAllCompleted archives every completed, unarchived todo in a single
// persistence write. It returns the number archived and is idempotent.
func (s *Store) ArchiveAllCompleted() int {
	s.mu.Lock()
	count := 0
	now := s.now().UTC()
	for i := range s.todos {
		if s.todos[i].Completed && !s.todos[i].Archived {
			s.todos[i].Archived = true
			s.todos[i].UpdatedAt = now
			count++
		}
	}
	s.mu.Unlock()

	if count > 0 {
		s.persist()
	}
	return count
}

// Reorder moves the todo to newIndex within the full collection.
func (s *Store) Reorder(id string, newIndex int) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return NotFoundError{ID: id}
	}
	if newIndex < 0 || newIndex >= len(s.todos) {
		n := len(s.todos)
		s.mu.Unlock()
		return IndexError{Index: newIndex, Len: n}
	}
	t := s.todos[i]
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	rest := append([]model.Todo{}, s.todos[newIndex:]...)
	s.todos = append(append(s.todos[:newIndex], t), rest...)
	s.mu.Unlock()

	s.persist()
	return nil
}

// Filter returns the todos matching searchTerm, restricted to the active
// scope unless includeArchived is set. The term is lowercased, trimmed and
// whitespace-collapsed; multiple tokens must all match as substrings.
func (s *Store) Filter(searchTerm string, includeArchived bool) []model.Todo {
	scoped := s.Scoped(includeArchived)
	tokens := normalizeTerm(searchTerm)
	if len(tokens) == 0 {
		return scoped
	}
	out := make([]model.Todo, 0, len(scoped))
	for _, t := range scoped {
		if matchesAll(t.Text, tokens) {
			out = append(out, t)
		}
	}
	return out
}

// Scoped returns a copy of the collection in current order: everything when
// showArchived is set, the active subset otherwise.
func (s *Store) Scoped(showArchived bool) []model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Todo, 0, len(s.todos))
	for _, t := range s.todos {
		if !showArchived && t.Archived {
			continue
		}
		out = append(out, t)
	}
	return out
}

// All returns a copy of the full collection, archived included.
func (s *Store) All() []model.Todo {
	return s.Scoped(true)
}

// Stats counts the collection for one scope. Archived always counts across
// the whole collection.
func (s *Store) Stats(includeArchived bool) model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.Stats
	for _, t := range s.todos {
		if t.Archived {
			st.Archived++
		}
		if t.Archived && !includeArchived {
			continue
		}
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}

// Len returns the full collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.todos)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) idExistsLocked(id string) bool {
	return s.indexLocked(id) >= 0
}

// persist serializes the full collection into the todos slot. Write-through:
// failures degrade to lower storage tiers and never roll back memory.
func (s *Store) persist() {
	s.mu.Lock()
	raw, err := json.Marshal(s.todos)
	s.mu.Unlock()
	if err != nil {
		log.Error("serialize todos", "err", err)
		return
	}
	s.storage.Set(storage.SlotTodos, string(raw))
	if s.guard != nil {
		s.guard.RecordActivity()
	}
}
