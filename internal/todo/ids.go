package todo

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Fallback entropy for the rare case where crypto/rand is unavailable.
// ULIDs built from it still carry a millisecond timestamp, so collisions
// stay unlikely even with the weaker randomness.
var (
	fallbackMu      sync.Mutex
	fallbackEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newID returns a process-unique todo id.
//
// The primary path is a random (cryptographic) UUID. The single documented
// fallback is a monotonic ULID seeded from math/rand, used only when the
// system entropy source fails. Either way the candidate is checked against
// the live collection and regenerated on conflict.
func newID(exists func(string) bool) string {
	for i := 0; i < 10; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			break
		}
		s := id.String()
		if !exists(s) {
			return s
		}
	}
	for {
		fallbackMu.Lock()
		id, err := ulid.New(ulid.Now(), fallbackEntropy)
		fallbackMu.Unlock()
		if err != nil {
			time.Sleep(time.Millisecond)
			continue
		}
		s := strings.ToLower(id.String())
		if !exists(s) {
			return s
		}
	}
}
