package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"autotodo/internal/shortcut"
)

// eventForKey adapts a bubbletea key message to a dispatcher event.
//
// bubbletea reports combos as strings like "ctrl+shift+d", "alt+enter" or
// plain "x"; modifiers are peeled off the front and the remainder goes
// through the canonical key naming.
func eventForKey(msg tea.KeyMsg, prevented *bool) shortcut.Event {
	s := msg.String()

	ev := shortcut.Event{
		PreventDefault: func() {
			if prevented != nil {
				*prevented = true
			}
		},
	}

	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			ev.Ctrl = true
			s = strings.TrimPrefix(s, "ctrl+")
		case strings.HasPrefix(s, "alt+"):
			ev.Alt = true
			s = strings.TrimPrefix(s, "alt+")
		case strings.HasPrefix(s, "shift+"):
			ev.Shift = true
			s = strings.TrimPrefix(s, "shift+")
		default:
			ev.Key = shortcut.CanonicalKey(s)
			return ev
		}
	}
}
