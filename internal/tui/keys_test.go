package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestEventForKeyPlainRune(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}
	ev := eventForKey(msg, nil)
	if ev.Key != "a" || ev.Ctrl || ev.Alt || ev.Shift {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEventForKeyCtrlCombo(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyCtrlN}
	ev := eventForKey(msg, nil)
	if !ev.Ctrl || ev.Key != "n" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEventForKeyNamedKey(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyEsc}
	ev := eventForKey(msg, nil)
	if ev.Key != "Escape" {
		t.Fatalf("expected canonical Escape, got %q", ev.Key)
	}

	msg = tea.KeyMsg{Type: tea.KeyEnter}
	ev = eventForKey(msg, nil)
	if ev.Key != "Enter" {
		t.Fatalf("expected canonical Enter, got %q", ev.Key)
	}
}

func TestEventForKeyAltModifier(t *testing.T) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}
	ev := eventForKey(msg, nil)
	if !ev.Alt || ev.Key != "x" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEventForKeyPreventDefault(t *testing.T) {
	prevented := false
	msg := tea.KeyMsg{Type: tea.KeyCtrlN}
	ev := eventForKey(msg, &prevented)
	ev.PreventDefault()
	if !prevented {
		t.Fatalf("expected prevented flag set")
	}
}
