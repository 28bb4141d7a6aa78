package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"autotodo/internal/controller"
	"autotodo/internal/shortcut"
	"autotodo/internal/storage"
	"autotodo/internal/todo"
)

// bridge forwards controller callbacks into the bubbletea message loop. The
// program is attached after construction, so callbacks fired before the loop
// exists are dropped instead of blocking.
type bridge struct {
	mu sync.Mutex
	p  *tea.Program
}

func (b *bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.p = p
	b.mu.Unlock()
}

func (b *bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *bridge) Render(state controller.RenderState) { b.send(renderMsg{state: state}) }

func (b *bridge) Notify(message string) { b.send(noticeMsg{text: message}) }

func (b *bridge) NotifyError(message string) { b.send(noticeMsg{text: message, isError: true}) }

// Options are the config knobs the TUI honors.
type Options struct {
	// Debounce overrides the search debounce when > 0.
	Debounce time.Duration
	// Theme forces "light" or "dark"; empty follows the persisted choice.
	Theme string
}

func Run(st *todo.Store, mgr *storage.Manager, guard *storage.Guard, opts Options) error {
	applyColorProfilePreference()

	br := &bridge{}
	d := shortcut.NewDispatcher()
	ctrl := controller.New(controller.Opts{
		Store:      st,
		Storage:    mgr,
		Dispatcher: d,
		View:       br,
		Notifier:   br,
		Theme:      controller.Theme(opts.Theme),
		Hooks: controller.Hooks{
			FocusInput:  func() { br.send(focusMsg(focusInput)) },
			FocusSearch: func() { br.send(focusMsg(focusSearch)) },
			SubmitAdd:   func() { br.send(submitAddMsg{}) },
			SubmitEdit:  func() { br.send(submitEditMsg{}) },
			ShowHelp:    func() { br.send(showHelpMsg{}) },
		},
	})
	if opts.Debounce > 0 {
		ctrl.SetDebounce(opts.Debounce)
	}

	m := newAppModel(ctrl, d, guard)
	p := tea.NewProgram(m, tea.WithAltScreen())
	br.attach(p)

	_, err := p.Run()
	ctrl.CancelPendingSearch()
	return err
}
