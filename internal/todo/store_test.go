package todo

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"autotodo/internal/model"
	"autotodo/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *storage.Manager) {
	t.Helper()
	m := storage.NewManager(storage.NewDetector(
		storage.NewPrimaryBackend(t.TempDir()),
		storage.NewMemoryBackend(),
	))
	s := NewStore(m, nil)
	s.Load(context.Background())
	return s, m
}

func TestAddPrependsAndPersists(t *testing.T) {
	s, m := newTestStore(t)

	first, err := s.Add("first")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.Add("second")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	all := s.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v", all)
	}
	if first.CreatedAt.IsZero() || !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("timestamps not initialized: %+v", first)
	}

	raw, ok := m.Get(storage.SlotTodos)
	if !ok {
		t.Fatalf("expected todos slot written")
	}
	var persisted []model.Todo
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted payload: %v", err)
	}
	if len(persisted) != 2 || persisted[0].Text != "second" {
		t.Fatalf("unexpected persisted payload: %s", raw)
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	s, _ := newTestStore(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := s.Add(text); !errors.Is(err, ErrEmptyText) {
			t.Fatalf("add %q: expected ErrEmptyText, got %v", text, err)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("rejected adds must not modify the collection")
	}
}

func TestUpdateTrimsAndValidates(t *testing.T) {
	s, _ := newTestStore(t)
	added, _ := s.Add("original")

	updated, err := s.Update(added.ID, "  new text  ")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Text != "new text" {
		t.Fatalf("expected trimmed text, got %q", updated.Text)
	}

	if _, err := s.Update(added.ID, "  "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	var nf NotFoundError
	if _, err := s.Update("nope", "text"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestToggleComplete(t *testing.T) {
	s, _ := newTestStore(t)
	added, _ := s.Add("task")

	toggled, ok := s.ToggleComplete(added.ID)
	if !ok || !toggled.Completed {
		t.Fatalf("expected completed after toggle: ok=%v %+v", ok, toggled)
	}
	toggled, _ = s.ToggleComplete(added.ID)
	if toggled.Completed {
		t.Fatalf("expected pending after second toggle")
	}
	if _, ok := s.ToggleComplete("missing"); ok {
		t.Fatalf("toggle of unknown id must report false")
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Add("a")
	s.Add("b")

	if !s.Delete(a.ID) {
		t.Fatalf("expected delete to succeed")
	}
	if s.Delete(a.ID) {
		t.Fatalf("second delete must report false")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 todo left, got %d", s.Len())
	}
}

func TestArchiveDoesNotRequireCompletion(t *testing.T) {
	s, _ := newTestStore(t)
	added, _ := s.Add("still pending")

	archived, ok := s.Archive(added.ID)
	if !ok || !archived.Archived {
		t.Fatalf("expected archive of pending todo: ok=%v %+v", ok, archived)
	}
	if archived.Completed {
		t.Fatalf("archiving must not complete the todo")
	}

	unarchived, ok := s.Unarchive(added.ID)
	if !ok || unarchived.Archived {
		t.Fatalf("expected unarchive: ok=%v %+v", ok, unarchived)
	}
}

func TestArchiveAllCompletedIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Add("done 1")
	s.Add("pending")
	c, _ := s.Add("done 2")
	s.ToggleComplete(a.ID)
	s.ToggleComplete(c.ID)

	if n := s.ArchiveAllCompleted(); n != 2 {
		t.Fatalf("expected 2 archived, got %d", n)
	}
	if n := s.ArchiveAllCompleted(); n != 0 {
		t.Fatalf("second run must archive nothing, got %d", n)
	}

	active := s.Scoped(false)
	if len(active) != 1 || active[0].Text != "pending" {
		t.Fatalf("unexpected active set: %v", active)
	}
}

func TestFilterMatchesAllTokens(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("Buy groceries at the market")
	s.Add("buy milk")
	s.Add("Call the dentist")

	cases := []struct {
		term string
		want int
	}{
		{"buy", 2},
		{"BUY   milk", 1}, // tokens are AND-ed, case-insensitive
		{"  the  ", 2},
		{"buy dentist", 0},
		{"", 3},
		{"   ", 3},
	}
	for _, tc := range cases {
		got := s.Filter(tc.term, false)
		if len(got) != tc.want {
			t.Fatalf("filter %q: expected %d, got %d (%v)", tc.term, tc.want, len(got), got)
		}
	}
}

func TestFilterScopesArchived(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Add("archived buy")
	s.Add("active buy")
	s.Archive(a.ID)

	if got := s.Filter("buy", false); len(got) != 1 || got[0].Text != "active buy" {
		t.Fatalf("active scope: %v", got)
	}
	if got := s.Filter("buy", true); len(got) != 2 {
		t.Fatalf("archived scope should include both, got %v", got)
	}
}

func TestReorderPreservesMultiset(t *testing.T) {
	s, _ := newTestStore(t)
	var ids []string
	for _, text := range []string{"a", "b", "c", "d"} {
		added, _ := s.Add(text)
		ids = append(ids, added.ID)
	}
	// Current order is d, c, b, a. Move "a" to the front.
	if err := s.Reorder(ids[0], 0); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	all := s.All()
	if all[0].Text != "a" {
		t.Fatalf("expected a first, got %v", all)
	}
	seen := map[string]bool{}
	for _, t2 := range all {
		seen[t2.ID] = true
	}
	if len(seen) != 4 {
		t.Fatalf("reorder lost or duplicated todos: %v", all)
	}

	var ie IndexError
	if err := s.Reorder(ids[0], 4); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if err := s.Reorder(ids[0], -1); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError for negative index, got %v", err)
	}
	var nf NotFoundError
	if err := s.Reorder("missing", 0); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStats(t *testing.T) {
	s, _ := newTestStore(t)
	a, _ := s.Add("done")
	b, _ := s.Add("archived done")
	s.Add("pending")
	s.ToggleComplete(a.ID)
	s.ToggleComplete(b.ID)
	s.Archive(b.ID)

	st := s.Stats(false)
	if st.Total != 2 || st.Completed != 1 || st.Pending != 1 || st.Archived != 1 {
		t.Fatalf("active stats: %+v", st)
	}
	st = s.Stats(true)
	if st.Total != 3 || st.Completed != 2 || st.Pending != 1 || st.Archived != 1 {
		t.Fatalf("full stats: %+v", st)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m1 := storage.NewManager(storage.NewDetector(storage.NewPrimaryBackend(dir), storage.NewMemoryBackend()))
	s1 := NewStore(m1, nil)
	s1.Load(context.Background())
	added, _ := s1.Add("survive restart")
	s1.ToggleComplete(added.ID)

	m2 := storage.NewManager(storage.NewDetector(storage.NewPrimaryBackend(dir), storage.NewMemoryBackend()))
	s2 := NewStore(m2, nil)
	s2.Load(context.Background())

	got, ok := s2.Get(added.ID)
	if !ok {
		t.Fatalf("expected todo after reload")
	}
	if got.Text != "survive restart" || !got.Completed {
		t.Fatalf("reloaded todo differs: %+v", got)
	}
}

func TestLoadMigratesLegacyEntries(t *testing.T) {
	s, m := newTestStore(t)

	// Legacy payload: no archived field at all.
	legacy := `[
		{"id":"one","text":"old 1","completed":false,"createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"},
		{"id":"two","text":"old 2","completed":true,"createdAt":"2024-01-02T00:00:00Z","updatedAt":"2024-01-02T00:00:00Z"}
	]`
	m.Set(storage.SlotTodos, legacy)
	s.Load(context.Background())

	for _, id := range []string{"one", "two"} {
		got, ok := s.Get(id)
		if !ok {
			t.Fatalf("missing migrated todo %q", id)
		}
		if got.Archived {
			t.Fatalf("migrated todo %q must default to unarchived", id)
		}
	}

	// Migration re-persists immediately: the slot now carries the flag.
	raw, _ := m.Get(storage.SlotTodos)
	var wire []map[string]any
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		t.Fatalf("slot payload: %v", err)
	}
	for _, w := range wire {
		if _, ok := w["archived"]; !ok {
			t.Fatalf("expected archived field after migration: %v", w)
		}
	}
}

func TestLoadMixedLegacyAndCurrentEntries(t *testing.T) {
	s, m := newTestStore(t)

	m.Set(storage.SlotTodos, `[
		{"id":"1","text":"a","completed":false},
		{"id":"2","text":"b","completed":true,"archived":true}
	]`)
	s.Load(context.Background())

	one, _ := s.Get("1")
	if one.Archived {
		t.Fatalf("legacy entry must migrate to archived=false")
	}
	two, _ := s.Get("2")
	if !two.Archived {
		t.Fatalf("explicit archived flag must survive the load")
	}

	st := s.Stats(false)
	if st.Total != 1 || st.Completed != 0 || st.Pending != 1 || st.Archived != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestLoadDiscardsCorruptPayload(t *testing.T) {
	s, m := newTestStore(t)

	m.Set(storage.SlotTodos, `{"not":"an array"}`)
	s.Load(context.Background())
	if s.Len() != 0 {
		t.Fatalf("corrupt slot must load as empty, got %d", s.Len())
	}

	m.Set(storage.SlotTodos, `[{"text":"missing id"}]`)
	s.Load(context.Background())
	if s.Len() != 0 {
		t.Fatalf("schema-invalid slot must load as empty, got %d", s.Len())
	}
}

func TestLoadRestoresFromBackupWhenSlotMissing(t *testing.T) {
	m := storage.NewManager(storage.NewDetector(
		storage.NewPrimaryBackend(t.TempDir()),
		storage.NewMemoryBackend(),
	))
	guard := storage.NewGuard(m, storage.GuardOpts{})

	// Seed, back up, then lose the slot.
	seed := NewStore(m, guard)
	seed.Load(context.Background())
	added, _ := seed.Add("precious")
	guard.BackupNow(context.Background())
	m.Remove(storage.SlotTodos)

	s := NewStore(m, guard)
	s.Load(context.Background())
	got, ok := s.Get(added.ID)
	if !ok || got.Text != "precious" {
		t.Fatalf("expected restore from backup, got ok=%v %+v", ok, got)
	}
}
