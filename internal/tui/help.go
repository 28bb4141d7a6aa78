package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"autotodo/internal/controller"
	"autotodo/internal/format"
)

var (
	helpRendererMu sync.Mutex
	// Renderers are cached by style + wrap width. WithAutoStyle() is avoided
	// on purpose: it can block on terminal background queries.
	helpRenderers = map[string]*glamour.TermRenderer{}
)

func (m appModel) helpView() string {
	md := format.ShortcutMarkdown(m.dispatcher.Entries())
	md += "\n---\n\nPress any key to close.\n"

	width := m.width - 4
	if width < 20 {
		width = 20
	}
	if width > 100 {
		width = 100
	}

	style := "light"
	if m.state.Theme == controller.ThemeDark {
		style = "dark"
	}

	key := style + ":" + strconv.Itoa(width)
	helpRendererMu.Lock()
	r := helpRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			helpRendererMu.Unlock()
			return md
		}
		helpRenderers[key] = rr
		r = rr
	}
	helpRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
