package format

import (
	"fmt"
	"sort"
	"strings"

	"autotodo/internal/shortcut"
)

// ShortcutMarkdown renders the registered shortcut table as markdown, grouped
// by category, for the help surface.
func ShortcutMarkdown(entries []*shortcut.Entry) string {
	byCategory := map[string][]*shortcut.Entry{}
	var categories []string
	for _, e := range entries {
		cat := e.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := byCategory[cat]; !ok {
			categories = append(categories, cat)
		}
		byCategory[cat] = append(byCategory[cat], e)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("# Keyboard shortcuts\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "\n## %s\n\n", cat)
		es := byCategory[cat]
		sort.Slice(es, func(i, j int) bool { return ComboLabel(es[i]) < ComboLabel(es[j]) })
		for _, e := range es {
			fmt.Fprintf(&b, "- `%s`: %s", ComboLabel(e), e.Description)
			if e.Context != shortcut.ContextGlobal {
				fmt.Fprintf(&b, " *(%s)*", e.Context)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ComboLabel formats an entry's combo as "ctrl+shift+x".
func ComboLabel(e *shortcut.Entry) string {
	var parts []string
	if e.Ctrl {
		parts = append(parts, "ctrl")
	}
	if e.Alt {
		parts = append(parts, "alt")
	}
	if e.Shift {
		parts = append(parts, "shift")
	}
	key := shortcut.CanonicalKey(e.Key)
	if key == " " {
		key = "space"
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
