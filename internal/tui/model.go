package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"autotodo/internal/controller"
	"autotodo/internal/model"
	"autotodo/internal/shortcut"
	"autotodo/internal/storage"
)

type focusArea int

const (
	focusList focusArea = iota
	focusInput
	focusSearch
	focusEdit
)

// Messages posted by the bridge (controller callbacks) and the default
// shortcut hooks.
type (
	renderMsg struct{ state controller.RenderState }
	noticeMsg struct {
		text    string
		isError bool
	}
	focusMsg      focusArea
	submitAddMsg  struct{}
	submitEditMsg struct{}
	showHelpMsg   struct{}
)

type appModel struct {
	ctrl       *controller.Controller
	dispatcher *shortcut.Dispatcher
	guard      *storage.Guard

	input  textinput.Model
	search textinput.Model
	edit   textinput.Model

	state     controller.RenderState
	haveState bool

	cursor   int
	focus    focusArea
	showHelp bool

	notice    string
	noticeErr bool

	width  int
	height int
}

func newAppModel(ctrl *controller.Controller, d *shortcut.Dispatcher, guard *storage.Guard) appModel {
	input := textinput.New()
	input.Placeholder = "What needs doing?"
	input.CharLimit = 500

	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 200

	edit := textinput.New()
	edit.CharLimit = 500

	return appModel{
		ctrl:       ctrl,
		dispatcher: d,
		guard:      guard,
		input:      input,
		search:     search,
		edit:       edit,
	}
}

func (m appModel) Init() tea.Cmd {
	return func() tea.Msg {
		m.ctrl.Init()
		return nil
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 12
		if w < 20 {
			w = 20
		}
		m.input.Width = w
		m.search.Width = w
		m.edit.Width = w
		return m, nil

	case renderMsg:
		m.state = msg.state
		m.haveState = true
		applyTheme(msg.state.Theme)
		if m.cursor >= len(msg.state.Filtered) {
			m.cursor = len(msg.state.Filtered) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case noticeMsg:
		m.notice = msg.text
		m.noticeErr = msg.isError
		return m, nil

	case focusMsg:
		return m.setFocus(focusArea(msg)), nil

	case submitAddMsg:
		text := m.input.Value()
		m.ctrl.Add(text)
		if strings.TrimSpace(text) != "" {
			m.input.SetValue("")
			m.notice = ""
		}
		return m, nil

	case submitEditMsg:
		m.ctrl.SaveEdit(m.edit.Value())
		if _, editing := m.ctrl.Editing(); !editing {
			m = m.setFocus(focusList)
		}
		return m, nil

	case showHelpMsg:
		m.showHelp = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	prevented := false
	ev := eventForKey(msg, &prevented)

	// Plain keys belong to whichever text field has focus; combos and
	// list-focused keys go through the dispatcher first.
	typing := m.focus != focusList
	offer := !typing || ev.Ctrl || ev.Alt ||
		(m.focus == focusEdit && (ev.Key == "Enter" || ev.Key == "Escape"))
	if offer && m.ctrl.Dispatch(ev) && prevented {
		return m.afterDispatch(), nil
	}
	if offer && m.focus == focusEdit {
		// Escape/Enter are consumed by the editing context even without
		// PreventDefault; letting them fall through would feed stale
		// input to a field that is going away.
		if ev.Key == "Enter" || ev.Key == "Escape" {
			return m.afterDispatch(), nil
		}
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusInput:
		switch msg.String() {
		case "enter":
			return m.Update(submitAddMsg{})
		case "esc":
			return m.setFocus(focusList), nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	case focusSearch:
		switch msg.String() {
		case "enter", "esc":
			return m.setFocus(focusList), nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.ctrl.SearchInput(m.search.Value())
		return m, cmd
	case focusEdit:
		var cmd tea.Cmd
		m.edit, cmd = m.edit.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.state.Filtered)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		if n := len(m.state.Filtered); n > 0 {
			m.cursor = n - 1
		}
	case "i", "n":
		return m.setFocus(focusInput), nil
	case "enter", "x", " ", "space":
		if t, ok := m.selected(); ok {
			m.ctrl.Toggle(t.ID)
		}
	case "e":
		if t, ok := m.selected(); ok {
			m.ctrl.BeginEdit(t.ID)
			m.edit.SetValue(t.Text)
			m.edit.CursorEnd()
			return m.setFocus(focusEdit), nil
		}
	case "d":
		if t, ok := m.selected(); ok {
			m.ctrl.Delete(t.ID)
		}
	case "a":
		if t, ok := m.selected(); ok {
			if m.state.ShowArchived {
				m.ctrl.Unarchive(t.ID)
			} else {
				m.ctrl.Archive(t.ID)
			}
		}
	case "v":
		m.cursor = 0
		m.ctrl.ToggleArchivedView()
	case "T":
		// Terminals fold ctrl+m into Enter, so the theme toggle gets a
		// plain key as well.
		m.ctrl.ToggleTheme()
	}
	return m, nil
}

// afterDispatch reconciles model focus with controller state after a shortcut
// fired (the editing context may have ended under us).
func (m appModel) afterDispatch() appModel {
	if m.focus == focusEdit {
		if _, editing := m.ctrl.Editing(); !editing {
			m = m.setFocus(focusList)
		}
	}
	return m
}

func (m appModel) setFocus(f focusArea) appModel {
	m.focus = f
	m.input.Blur()
	m.search.Blur()
	m.edit.Blur()
	switch f {
	case focusInput:
		m.input.Focus()
	case focusSearch:
		m.search.Focus()
	case focusEdit:
		m.edit.Focus()
	}
	return m
}

func (m appModel) selected() (model.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Filtered) {
		return model.Todo{}, false
	}
	return m.state.Filtered[m.cursor], true
}

func (m appModel) View() string {
	if !m.haveState {
		return "Loading..."
	}
	if m.showHelp {
		return m.helpView()
	}

	var b strings.Builder

	title := "autotodo"
	if m.state.ShowArchived {
		title += "  " + styleAccent().Render("[archived]")
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("  ")
	b.WriteString(styleMuted().Render(m.statsLine()))
	b.WriteString("\n\n")

	b.WriteString(m.fieldLine("add", m.input.View(), m.focus == focusInput))
	b.WriteString(m.fieldLine("find", m.search.View(), m.focus == focusSearch))
	b.WriteString("\n")

	if len(m.state.Filtered) == 0 {
		if m.state.SearchTerm != "" {
			b.WriteString(styleMuted().Render("  No todos match the search."))
		} else if m.state.ShowArchived {
			b.WriteString(styleMuted().Render("  Nothing archived."))
		} else {
			b.WriteString(styleMuted().Render("  Nothing to do."))
		}
		b.WriteString("\n")
	}
	for i, t := range m.state.Filtered {
		b.WriteString(m.todoLine(i, t))
	}

	b.WriteString("\n")
	if m.notice != "" {
		if m.noticeErr {
			b.WriteString(styleError().Render(m.notice))
		} else {
			b.WriteString(styleMuted().Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(styleMuted().Render(m.footerLine()))
	return b.String()
}

func (m appModel) fieldLine(label, view string, focused bool) string {
	marker := "  "
	if focused {
		marker = styleAccent().Render("> ")
	}
	view = strings.ReplaceAll(view, "\n", " ")
	return fmt.Sprintf("%s%s %s\n", marker, styleMuted().Render(label+":"), view)
}

func (m appModel) todoLine(i int, t model.Todo) string {
	editingID, editing := m.ctrl.Editing()
	if editing && t.ID == editingID && m.focus == focusEdit {
		return fmt.Sprintf("  %s %s\n", styleAccent().Render("edit"), m.edit.View())
	}

	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	text := t.Text
	if t.Completed {
		text = styleDone().Render(text)
	}
	line := fmt.Sprintf("%s %s %s", box, text, styleMuted().Render(shortID(t.ID)))
	if i == m.cursor && m.focus == focusList {
		line = styleSelected().Render(line)
	}
	return "  " + m.fitWidth(line) + "\n"
}

// fitWidth cuts a styled line to the terminal width. The cut can land inside
// an ANSI sequence, so styling is explicitly terminated to prevent bleed.
func (m appModel) fitWidth(line string) string {
	if m.width <= 2 {
		return line
	}
	max := m.width - 2
	if xansi.StringWidth(line) <= max {
		return line
	}
	return xansi.Cut(line, 0, max) + "\x1b[0m"
}

func (m appModel) statsLine() string {
	done := 0
	for _, t := range m.state.All {
		if t.Completed {
			done++
		}
	}
	s := fmt.Sprintf("%d/%d done", done, len(m.state.All))
	if m.state.SearchTerm != "" {
		s += fmt.Sprintf("  search: %q", m.state.SearchTerm)
	}
	return s
}

func (m appModel) footerLine() string {
	hints := "j/k move · x toggle · e edit · d delete · a archive · v archived · / search · T theme · ? help · q quit"
	if risk := m.guard.Risk(); risk != storage.RiskSafe {
		return styleError().Render("storage "+string(risk)) + "  " + hints
	}
	return hints
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
