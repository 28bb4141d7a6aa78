package storage

import (
	"sort"
	"testing"
)

func TestDiskvBackendFreeFormKeys(t *testing.T) {
	b := NewPrimaryBackend(t.TempDir())

	keys := []string{
		"todos",
		"todo-theme",
		"with spaces and / slashes",
		"unicode-nøkkel-🔑",
	}
	for _, k := range keys {
		if err := b.Set(k, "v:"+k); err != nil {
			t.Fatalf("set %q: %v", k, err)
		}
	}
	for _, k := range keys {
		v, ok, err := b.Get(k)
		if err != nil || !ok {
			t.Fatalf("get %q: ok=%v err=%v", k, ok, err)
		}
		if v != "v:"+k {
			t.Fatalf("get %q: got %q", k, v)
		}
	}

	listed, err := b.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	sort.Strings(listed)
	want := append([]string(nil), keys...)
	sort.Strings(want)
	if len(listed) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), listed)
	}
	for i := range want {
		if listed[i] != want[i] {
			t.Fatalf("key mismatch: got %q want %q", listed[i], want[i])
		}
	}
}

func TestDiskvBackendAbsentAndRemove(t *testing.T) {
	b := NewPrimaryBackend(t.TempDir())

	if _, ok, err := b.Get("missing"); ok || err != nil {
		t.Fatalf("absent get: ok=%v err=%v", ok, err)
	}
	// Removing an absent key is not an error.
	if err := b.Remove("missing"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if err := b.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := b.Remove("k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := b.Get("k"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestDiskvBackendClear(t *testing.T) {
	b := NewSessionBackendAt(t.TempDir())

	b.Set("a", "1")
	b.Set("b", "2")
	if err := b.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	keys, err := b.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}
}

func TestKeyEncodingRoundTrip(t *testing.T) {
	for _, k := range []string{"", "todos", "UPPER lower", "a/b\\c", "🗒"} {
		got, ok := decodeKey(encodeKey(k))
		if !ok || got != k {
			t.Fatalf("round trip %q: ok=%v got=%q", k, ok, got)
		}
	}
}
