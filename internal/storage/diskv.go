package storage

import (
	"encoding/base32"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// diskvBackend adapts a diskv store to the Backend interface.
//
// Slot keys are free-form strings, so they are encoded to a filesystem-safe
// form before hitting disk and decoded again when listing.
type diskvBackend struct {
	tier Tier
	d    *diskv.Diskv
}

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func encodeKey(key string) string {
	return strings.ToLower(keyEncoding.EncodeToString([]byte(key)))
}

func decodeKey(name string) (string, bool) {
	b, err := keyEncoding.DecodeString(strings.ToUpper(name))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func newDiskvBackend(tier Tier, basePath string) Backend {
	return &diskvBackend{
		tier: tier,
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
	}
}

// NewPrimaryBackend returns the durable backend rooted at dir.
// It survives process restarts; this is the analog of persistent storage.
func NewPrimaryBackend(dir string) Backend {
	return newDiskvBackend(TierPrimary, dir)
}

// NewSessionBackend returns the session-scoped backend. It lives under the
// OS temp directory, so the platform reclaims it between sessions.
func NewSessionBackend() Backend {
	return newDiskvBackend(TierSecondary, filepath.Join(os.TempDir(), "autotodo-session"))
}

// NewSessionBackendAt is like NewSessionBackend with an explicit root
// (fixtures/tests).
func NewSessionBackendAt(dir string) Backend {
	return newDiskvBackend(TierSecondary, dir)
}

func (b *diskvBackend) Tier() Tier { return b.tier }

func (b *diskvBackend) Get(key string) (string, bool, error) {
	v, err := b.d.Read(encodeKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(v), true, nil
}

func (b *diskvBackend) Set(key, value string) error {
	return b.d.Write(encodeKey(key), []byte(value))
}

func (b *diskvBackend) Remove(key string) error {
	err := b.d.Erase(encodeKey(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (b *diskvBackend) Keys() ([]string, error) {
	var out []string
	for name := range b.d.Keys(nil) {
		if k, ok := decodeKey(name); ok {
			out = append(out, k)
		}
	}
	return out, nil
}

func (b *diskvBackend) Clear() error {
	return b.d.EraseAll()
}
