package format

import (
	"strings"
	"testing"

	"autotodo/internal/shortcut"
)

func TestComboLabel(t *testing.T) {
	cases := []struct {
		entry shortcut.Entry
		want  string
	}{
		{shortcut.Entry{Key: "n", Ctrl: true}, "ctrl+n"},
		{shortcut.Entry{Key: "d", Ctrl: true, Shift: true}, "ctrl+shift+d"},
		{shortcut.Entry{Key: "Enter", Alt: true}, "alt+Enter"},
		{shortcut.Entry{Key: "space"}, "space"},
		{shortcut.Entry{Key: "/"}, "/"},
	}
	for _, tc := range cases {
		if got := ComboLabel(&tc.entry); got != tc.want {
			t.Fatalf("ComboLabel(%+v) = %q, want %q", tc.entry, got, tc.want)
		}
	}
}

func TestShortcutMarkdownGroupsByCategory(t *testing.T) {
	entries := []*shortcut.Entry{
		{Key: "n", Ctrl: true, Description: "Focus input", Category: "Navigation"},
		{Key: "t", Ctrl: true, Description: "Toggle todo", Category: "Todos"},
		{Key: "Escape", Context: "editing", Description: "Cancel edit", Category: "Editing"},
	}

	md := ShortcutMarkdown(entries)
	for _, want := range []string{"## Navigation", "## Todos", "## Editing", "`ctrl+n`", "*(editing)*"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}
