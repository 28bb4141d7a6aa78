package storage

import (
	"fmt"
	"sync"
)

// Tier identifies one of the three key-value backends, in preference order.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
	TierMemory    Tier = "memory"
)

// Well-known slot keys.
const (
	SlotTodos        = "todos"
	SlotTheme        = "todo-theme"
	SlotLastActivity = "autotodo_last_activity"
	SlotBackupData   = "autotodo_backup_data"
	SlotITPWarning   = "autotodo_itp_warning_shown"
)

// Backend is a single string key-value store. Values are always strings;
// callers serialize.
type Backend interface {
	Tier() Tier
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Keys() ([]string, error)
	Clear() error
}

// memoryBackend is the in-process last-resort store. It never fails.
type memoryBackend struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryBackend returns an empty in-process backend.
func NewMemoryBackend() Backend {
	return &memoryBackend{m: map[string]string{}}
}

func (b *memoryBackend) Tier() Tier { return TierMemory }

func (b *memoryBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *memoryBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = value
	return nil
}

func (b *memoryBackend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.m, key)
	return nil
}

func (b *memoryBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.m))
	for k := range b.m {
		out = append(out, k)
	}
	return out, nil
}

func (b *memoryBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m = map[string]string{}
	return nil
}

// safeGet/safeSet/safeRemove guard against panicking backends: any backend
// operation may blow up (full disk, revoked permissions, races with external
// cleaners) and none of that may escape to the user flow.

func safeGet(b Backend, key string) (v string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, ok = "", false
			err = fmt.Errorf("%s backend panic on get: %v", b.Tier(), r)
		}
	}()
	return b.Get(key)
}

func safeSet(b Backend, key, value string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s backend panic on set: %v", b.Tier(), r)
		}
	}()
	return b.Set(key, value)
}

func safeRemove(b Backend, key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s backend panic on remove: %v", b.Tier(), r)
		}
	}()
	return b.Remove(key)
}

func safeClear(b Backend) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s backend panic on clear: %v", b.Tier(), r)
		}
	}()
	return b.Clear()
}
