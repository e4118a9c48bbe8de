package ui

import (
	"fmt"

	"lazyban/internal/banlist"
)

// submitAdd adds the text field's address. Failures raise a warning and
// leave both the list and the field untouched.
func (m *Model) submitAdd() {
	if m.editor == nil {
		return
	}
	value := m.input.Value()
	ip, err := m.editor.Add(value)
	if err != nil {
		m.warning = banlist.Warning(err)
		return
	}
	m.input.SetValue("")
	m.err = nil
	m.notice = fmt.Sprintf("Banned %s", ip)
	m.clearSelection()
	m.moveCursorTo(ip)
}

func (m *Model) deleteSelected() {
	rows := m.selectedRows()
	if len(rows) == 0 && len(m.rows()) > 0 {
		rows = []int{m.cursor}
	}
	removed := m.editor.Delete(rows)
	m.clearSelection()
	m.clampCursor()
	if removed == 1 {
		m.notice = "Removed 1 address"
	} else {
		m.notice = fmt.Sprintf("Removed %d addresses", removed)
	}
}

func (m *Model) startFilter() {
	m.filterMode = true
	m.filter.SetValue(m.editor.Filter())
	m.filter.CursorEnd()
	m.filter.Focus()
	m.input.Blur()
}

func (m *Model) applyFilter() {
	m.filterMode = false
	m.filter.Blur()
	m.editor.SetFilter(m.filter.Value())
	m.clearSelection()
	m.cursor = 0
	m.clampCursor()
	if m.focus == focusInput {
		m.input.Focus()
	}
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.setFocus(focusList)
		return
	}
	m.setFocus(focusInput)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	if focus == focusInput {
		m.input.Focus()
		return
	}
	m.input.Blur()
}
