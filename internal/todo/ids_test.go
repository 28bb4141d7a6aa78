package todo

import "testing"

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	exists := func(id string) bool { return seen[id] }
	for i := 0; i < 10000; i++ {
		id := newID(exists)
		if id == "" {
			t.Fatalf("empty id at %d", i)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q at %d", id, i)
		}
		seen[id] = true
	}
}

func TestNewIDRetriesOnCollision(t *testing.T) {
	// Force the first candidates to "exist"; newID must keep generating
	// until it finds a free one.
	rejected := 0
	id := newID(func(string) bool {
		rejected++
		return rejected <= 3
	})
	if id == "" {
		t.Fatalf("expected an id despite collisions")
	}
	if rejected < 4 {
		t.Fatalf("expected at least 4 candidates, got %d", rejected)
	}
}
