package ui

import (
	"log/slog"

	"lazyban/internal/banlist"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, textinput.Blink, loadCmd(m.ctx, m.store))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.editor = msg.editor
		m.editor.SetOrder(m.order)
		m.clampCursor()
		return m, nil
	case savedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.result = msg.result
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.loading && !m.saving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if next, cmd, handled := m.handleWarningMode(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleBusy(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleHelpMode(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleFilterMode(msg); handled {
		return next, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocused(msg)
	}

	switch key.String() {
	case "ctrl+c", "esc":
		return m, m.cancel()
	case "ctrl+s":
		return m, m.confirm()
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusInput {
		if key.String() == "enter" {
			m.submitAdd()
			return m, nil
		}
		return m.updateFocused(msg)
	}
	return m.handleListKey(key)
}

func (m Model) handleWarningMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if m.warning == "" {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "enter", "esc", " ":
		m.warning = ""
		return m, nil, true
	case "ctrl+c":
		return m, m.cancel(), true
	default:
		return m, nil, true
	}
}

// handleBusy swallows keys while the list is loading or being written so
// the editor cannot change under the save command.
func (m Model) handleBusy(msg tea.Msg) (Model, tea.Cmd, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	if m.saving {
		return m, nil, true
	}
	if m.editor == nil {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, m.cancel(), true
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleHelpMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if !m.helpMode {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "esc", "?", "q":
		m.helpMode = false
		return m, nil, true
	case "ctrl+c":
		return m, m.cancel(), true
	default:
		return m, nil, true
	}
}

func (m Model) handleFilterMode(msg tea.Msg) (Model, tea.Cmd, bool) {
	if !m.filterMode {
		return m, nil, false
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	switch key.String() {
	case "enter":
		m.applyFilter()
		return m, nil, true
	case "esc":
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil, true
	case "ctrl+c":
		return m, m.cancel(), true
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd, true
}

func (m Model) handleListKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.rows()) - 1
		m.clampCursor()
	case " ", "x":
		m.toggleSelected()
	case "d", "delete", "backspace":
		m.deleteSelected()
	case "s":
		m.editor.ToggleOrder()
		m.order = m.editor.Order()
		m.clearSelection()
	case "/":
		m.startFilter()
	case "a", "i":
		m.setFocus(focusInput)
	case "?":
		m.helpMode = true
	case "enter":
		return m, m.confirm()
	}
	return m, nil
}

// updateFocused forwards a message to the text field when it has focus.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus != focusInput {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) confirm() tea.Cmd {
	if m.editor == nil {
		return m.cancel()
	}
	if !m.editor.Modified() {
		slog.Debug("editor closed without changes")
		m.result = banlist.Rejected
		return tea.Quit
	}
	m.saving = true
	m.err = nil
	return tea.Batch(m.spinner.Tick, confirmCmd(m.ctx, m.store, m.editor))
}

func (m *Model) cancel() tea.Cmd {
	if m.editor != nil {
		m.result = m.editor.Cancel()
	} else {
		m.result = banlist.Rejected
	}
	return tea.Quit
}
