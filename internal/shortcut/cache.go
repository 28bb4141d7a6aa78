package shortcut

import "sync"

// lookupCache memoizes canonical combo strings. Dispatch runs on every
// keystroke, so the hot path avoids re-concatenating modifier strings.
type lookupCache struct {
	mu     sync.Mutex
	mods   [8]string
	combos map[comboKey]string
}

type comboKey struct {
	context string
	key     string
	mods    uint8
}

const maxComboCacheSize = 256

func newLookupCache() *lookupCache {
	return &lookupCache{combos: map[comboKey]string{}}
}

func modMask(ctrl, alt, shift bool) uint8 {
	var m uint8
	if ctrl {
		m |= 1
	}
	if alt {
		m |= 2
	}
	if shift {
		m |= 4
	}
	return m
}

// modifierString returns the "ctrl+alt+shift+" style prefix in fixed order.
func (c *lookupCache) modifierString(ctrl, alt, shift bool) string {
	m := modMask(ctrl, alt, shift)
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.mods[m]; s != "" || m == 0 {
		return s
	}
	var b []byte
	if ctrl {
		b = append(b, "ctrl+"...)
	}
	if alt {
		b = append(b, "alt+"...)
	}
	if shift {
		b = append(b, "shift+"...)
	}
	c.mods[m] = string(b)
	return c.mods[m]
}

// canonical returns "<context>:<modifiers><lowercased-key>".
func (c *lookupCache) canonical(context, key string, ctrl, alt, shift bool) string {
	ck := comboKey{context: context, key: key, mods: modMask(ctrl, alt, shift)}
	c.mu.Lock()
	if s, ok := c.combos[ck]; ok {
		c.mu.Unlock()
		return s
	}
	c.mu.Unlock()

	s := context + ":" + c.modifierString(ctrl, alt, shift) + CanonicalKey(key)

	c.mu.Lock()
	if len(c.combos) >= maxComboCacheSize {
		c.combos = map[comboKey]string{}
	}
	c.combos[ck] = s
	c.mu.Unlock()
	return s
}
