package shortcut

import "strings"

// Canonical key names: single-character keys are their lowercased character;
// named keys keep their conventional capitalized spelling.
var namedKeys = map[string]string{
	"enter":      "Enter",
	"escape":     "Escape",
	"esc":        "Escape",
	"tab":        "Tab",
	"delete":     "Delete",
	"backspace":  "Backspace",
	"arrowup":    "ArrowUp",
	"arrowdown":  "ArrowDown",
	"arrowleft":  "ArrowLeft",
	"arrowright": "ArrowRight",
	"up":         "ArrowUp",
	"down":       "ArrowDown",
	"left":       "ArrowLeft",
	"right":      "ArrowRight",
	"home":       "Home",
	"end":        "End",
	"pageup":     "PageUp",
	"pagedown":   "PageDown",
	"pgup":       "PageUp",
	"pgdown":     "PageDown",
	"space":      " ",
	"f1":         "F1",
	"f2":         "F2",
	"f3":         "F3",
	"f4":         "F4",
	"f5":         "F5",
	"f6":         "F6",
	"f7":         "F7",
	"f8":         "F8",
	"f9":         "F9",
	"f10":        "F10",
	"f11":        "F11",
	"f12":        "F12",
}

// CanonicalKey normalizes a key name: named keys map to their canonical
// spelling, everything else lowercases.
func CanonicalKey(key string) string {
	if key == " " {
		return " "
	}
	if named, ok := namedKeys[strings.ToLower(strings.TrimSpace(key))]; ok {
		return named
	}
	return strings.ToLower(key)
}

// reservedCombos are combos the host environment typically owns (reload,
// devtools, focus traversal). Registering one works but logs a warning.
func isReservedCombo(key string, ctrl, alt, shift bool) bool {
	k := CanonicalKey(key)
	switch k {
	case "F5", "F12", "Tab":
		return true
	case "r", "w", "q":
		// Reload and window management combos.
		return ctrl && !alt
	}
	_ = shift
	return false
}
