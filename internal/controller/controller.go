package controller

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"autotodo/internal/model"
	"autotodo/internal/shortcut"
	"autotodo/internal/storage"
	"autotodo/internal/todo"
)

// DefaultDebounce is the search debounce applied when none is configured.
const DefaultDebounce = 150 * time.Millisecond

// Theme is the persisted UI theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// RenderState is the package the view collaborator receives on each render
// request.
type RenderState struct {
	Filtered     []model.Todo
	All          []model.Todo
	SearchTerm   string
	ShowArchived bool
	Theme        Theme
}

// View renders the current state. Rendering is one-way: the view never calls
// back into the controller.
type View interface {
	Render(state RenderState)
}

// Notifier surfaces user-visible messages (the only error the user flow ever
// sees is empty-text rejection; storage warnings arrive through the guard).
type Notifier interface {
	Notify(message string)
	NotifyError(message string)
}

// Hooks are view-owned actions the default shortcut table needs (focus moves,
// help). Nil hooks are skipped.
type Hooks struct {
	FocusInput  func()
	FocusSearch func()
	SubmitAdd   func()
	SubmitEdit  func()
	ShowHelp    func()
}

// Controller wires user events to store mutations and rerender requests, and
// owns the session-only UI state.
type Controller struct {
	store      *todo.Store
	storage    *storage.Manager
	dispatcher *shortcut.Dispatcher
	view       View
	notifier   Notifier
	hooks      Hooks

	forceTheme Theme

	mu           sync.Mutex
	searchTerm   string
	showArchived bool
	theme        Theme
	editingID    string
	debounce     time.Duration
	timer        *time.Timer
	pendingTerm  string
}

type Opts struct {
	Store      *todo.Store
	Storage    *storage.Manager
	Dispatcher *shortcut.Dispatcher
	View       View
	Notifier   Notifier
	Hooks      Hooks

	// Theme, when set, overrides both the persisted choice and the system
	// preference. Configuration wins over state.
	Theme Theme
}

func New(opts Opts) *Controller {
	return &Controller{
		store:      opts.Store,
		storage:    opts.Storage,
		dispatcher: opts.Dispatcher,
		view:       opts.View,
		notifier:   opts.Notifier,
		hooks:      opts.Hooks,
		forceTheme: opts.Theme,
		debounce:   DefaultDebounce,
	}
}

// Init loads the persisted theme (falling back to the system preference),
// registers the default shortcut table and issues the first render.
func (c *Controller) Init() {
	theme := ThemeLight
	if c.forceTheme == ThemeLight || c.forceTheme == ThemeDark {
		theme = c.forceTheme
	} else if v, ok := c.storage.Get(storage.SlotTheme); ok {
		switch Theme(v) {
		case ThemeLight, ThemeDark:
			theme = Theme(v)
		}
	} else if lipgloss.HasDarkBackground() {
		theme = ThemeDark
	}
	c.mu.Lock()
	c.theme = theme
	c.mu.Unlock()

	c.registerDefaultShortcuts()
	c.Render()
}

// SetDebounce configures the search debounce. Negative values are ignored;
// zero is valid and still defers to the timer goroutine.
func (c *Controller) SetDebounce(d time.Duration) {
	if d < 0 {
		return
	}
	c.mu.Lock()
	c.debounce = d
	c.mu.Unlock()
}

// SearchInput records a change of the search input. The search term is only
// applied (and a rerender requested) once the input has been quiet for the
// debounce interval.
func (c *Controller) SearchInput(term string) {
	c.mu.Lock()
	c.pendingTerm = term
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.applyPendingSearch)
	c.mu.Unlock()
}

// CancelPendingSearch drops any scheduled search application. Idempotent.
func (c *Controller) CancelPendingSearch() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
}

func (c *Controller) applyPendingSearch() {
	c.mu.Lock()
	c.searchTerm = c.pendingTerm
	c.timer = nil
	c.mu.Unlock()
	c.Render()
}

// SearchTerm returns the applied (post-debounce) search term.
func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// ShowArchived reports whether the archived view is active.
func (c *Controller) ShowArchived() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showArchived
}

// ToggleArchivedView flips the archived view and rerenders.
func (c *Controller) ToggleArchivedView() {
	c.mu.Lock()
	c.showArchived = !c.showArchived
	c.mu.Unlock()
	c.Render()
}

// Theme returns the current theme.
func (c *Controller) Theme() Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.theme
}

// ToggleTheme flips light/dark, persists the choice and rerenders.
func (c *Controller) ToggleTheme() {
	c.mu.Lock()
	if c.theme == ThemeDark {
		c.theme = ThemeLight
	} else {
		c.theme = ThemeDark
	}
	theme := c.theme
	c.mu.Unlock()

	c.storage.Set(storage.SlotTheme, string(theme))
	c.Render()
}

// Add creates a todo; empty text is surfaced through the notifier.
func (c *Controller) Add(text string) {
	if _, err := c.store.Add(text); err != nil {
		if errors.Is(err, todo.ErrEmptyText) && c.notifier != nil {
			c.notifier.NotifyError("Todo text cannot be empty.")
		}
		return
	}
	c.Render()
}

// Toggle flips completion of the todo.
func (c *Controller) Toggle(id string) {
	if _, ok := c.store.ToggleComplete(id); ok {
		c.Render()
	}
}

// Delete removes the todo.
func (c *Controller) Delete(id string) {
	if c.store.Delete(id) {
		c.Render()
	}
}

// Archive moves the todo out of the active scope.
func (c *Controller) Archive(id string) {
	if _, ok := c.store.Archive(id); ok {
		c.Render()
	}
}

// Unarchive returns the todo to the active scope.
func (c *Controller) Unarchive(id string) {
	if _, ok := c.store.Unarchive(id); ok {
		c.Render()
	}
}

// ArchiveAllCompleted bulk-archives completed todos and reports the count
// through the notifier.
func (c *Controller) ArchiveAllCompleted() {
	n := c.store.ArchiveAllCompleted()
	if n > 0 && c.notifier != nil {
		c.notifier.Notify("Archived completed todos.")
	}
	c.Render()
}

// BeginEdit marks id as being edited (drives the "editing" shortcut context).
func (c *Controller) BeginEdit(id string) {
	c.mu.Lock()
	c.editingID = id
	c.mu.Unlock()
}

// CancelEdit leaves editing mode without saving.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editingID = ""
	c.mu.Unlock()
	c.Render()
}

// SaveEdit applies text to the todo being edited and leaves editing mode.
func (c *Controller) SaveEdit(text string) {
	c.mu.Lock()
	id := c.editingID
	c.mu.Unlock()
	if id == "" {
		return
	}
	if _, err := c.store.Update(id, text); err != nil {
		if errors.Is(err, todo.ErrEmptyText) && c.notifier != nil {
			c.notifier.NotifyError("Todo text cannot be empty.")
		}
		return
	}
	c.mu.Lock()
	c.editingID = ""
	c.mu.Unlock()
	c.Render()
}

// Editing reports the id being edited, if any.
func (c *Controller) Editing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editingID, c.editingID != ""
}

// Render computes the filtered and scoped collections and hands them to the
// view.
func (c *Controller) Render() {
	if c.view == nil {
		return
	}
	c.mu.Lock()
	term := c.searchTerm
	showArchived := c.showArchived
	theme := c.theme
	c.mu.Unlock()

	c.view.Render(RenderState{
		Filtered:     c.store.Filter(term, showArchived),
		All:          c.store.Scoped(showArchived),
		SearchTerm:   term,
		ShowArchived: showArchived,
		Theme:        theme,
	})
}

// Dispatch forwards a key event to the shortcut dispatcher.
func (c *Controller) Dispatch(ev shortcut.Event) bool {
	return c.dispatcher.Dispatch(ev)
}

func (c *Controller) firstFiltered() (model.Todo, bool) {
	c.mu.Lock()
	term := c.searchTerm
	showArchived := c.showArchived
	c.mu.Unlock()
	filtered := c.store.Filter(term, showArchived)
	if len(filtered) == 0 {
		return model.Todo{}, false
	}
	return filtered[0], true
}

func (c *Controller) hook(f func()) func() {
	if f == nil {
		return func() {}
	}
	return f
}

func (c *Controller) registerDefaultShortcuts() {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.RegisterContext("editing", func() bool {
		_, editing := c.Editing()
		return editing
	})

	global := []*shortcut.Entry{
		{Key: "n", Ctrl: true, Action: c.hook(c.hooks.FocusInput), PreventDefault: true,
			Description: "Focus new-todo input", Category: "Navigation"},
		{Key: "f", Ctrl: true, Action: c.hook(c.hooks.FocusSearch), PreventDefault: true,
			Description: "Focus search", Category: "Navigation"},
		{Key: "/", Action: c.hook(c.hooks.FocusSearch),
			Description: "Focus search", Category: "Navigation"},
		{Key: "Enter", Ctrl: true, Action: c.hook(c.hooks.SubmitAdd), PreventDefault: true,
			Description: "Add todo", Category: "Todos"},
		{Key: "t", Ctrl: true, Action: func() {
			if t, ok := c.firstFiltered(); ok {
				c.Toggle(t.ID)
			}
		}, PreventDefault: true, Description: "Toggle first todo", Category: "Todos"},
		{Key: "Delete", Ctrl: true, Action: func() {
			if t, ok := c.firstFiltered(); ok {
				c.Delete(t.ID)
			}
		}, PreventDefault: true, Description: "Delete first todo", Category: "Todos"},
		{Key: "d", Ctrl: true, Shift: true, Action: c.ArchiveAllCompleted, PreventDefault: true,
			Description: "Archive completed todos", Category: "Todos"},
		{Key: "m", Ctrl: true, Action: c.ToggleTheme, PreventDefault: true,
			Description: "Toggle theme", Category: "Appearance"},
		{Key: "h", Ctrl: true, Action: c.hook(c.hooks.ShowHelp), PreventDefault: true,
			Description: "Show help", Category: "Help"},
		{Key: "?", Action: c.hook(c.hooks.ShowHelp),
			Description: "Show help", Category: "Help"},
		{Key: "F1", Action: c.hook(c.hooks.ShowHelp), PreventDefault: true,
			Description: "Show help", Category: "Help"},
	}
	editing := []*shortcut.Entry{
		{Key: "Escape", Context: "editing", Action: c.CancelEdit,
			Description: "Cancel edit", Category: "Editing"},
		{Key: "s", Ctrl: true, Context: "editing", Action: c.hook(c.hooks.SubmitEdit), PreventDefault: true,
			Description: "Save edit", Category: "Editing"},
		{Key: "Enter", Context: "editing", Action: c.hook(c.hooks.SubmitEdit),
			Description: "Save edit", Category: "Editing"},
	}
	for _, e := range global {
		_ = c.dispatcher.Register(e)
	}
	for _, e := range editing {
		_ = c.dispatcher.Register(e)
	}
}
