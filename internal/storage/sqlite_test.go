package storage

import (
	"context"
	"fmt"
	"testing"
)

func TestBackupStorePutLatest(t *testing.T) {
	ctx := context.Background()
	bs, err := OpenBackupStore(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer bs.Close()

	if _, ok, err := bs.Latest(ctx, "todos"); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	for i := 0; i < 8; i++ {
		if err := bs.Put(ctx, "todos", fmt.Sprintf("gen-%d", i)); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	v, ok, err := bs.Latest(ctx, "todos")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if v != "gen-7" {
		t.Fatalf("expected newest generation, got %q", v)
	}
}

func TestBackupStoreKeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	bs, err := OpenBackupStore(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer bs.Close()

	bs.Put(ctx, "todos", "a")
	bs.Put(ctx, "other", "b")

	if v, _, _ := bs.Latest(ctx, "todos"); v != "a" {
		t.Fatalf("todos: got %q", v)
	}
	if v, _, _ := bs.Latest(ctx, "other"); v != "b" {
		t.Fatalf("other: got %q", v)
	}
}

func TestBackupStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bs1, err := OpenBackupStore(ctx, dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := bs1.Put(ctx, "todos", "persisted"); err != nil {
		t.Fatalf("put: %v", err)
	}
	bs1.Close()

	bs2, err := OpenBackupStore(ctx, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer bs2.Close()
	v, ok, err := bs2.Latest(ctx, "todos")
	if err != nil || !ok || v != "persisted" {
		t.Fatalf("after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}
