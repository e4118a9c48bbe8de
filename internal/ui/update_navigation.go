package ui

import "sort"

func (m *Model) moveCursor(delta int) {
	rows := m.rows()
	if len(rows) == 0 {
		m.cursor = 0
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(rows) {
		next = len(rows) - 1
	}
	m.cursor = next
}

func (m *Model) moveCursorTo(ip string) {
	for i, row := range m.rows() {
		if row == ip {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if n == 0 || m.cursor < 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *Model) toggleSelected() {
	if len(m.rows()) == 0 {
		return
	}
	if m.selected == nil {
		m.selected = make(map[int]struct{})
	}
	if _, ok := m.selected[m.cursor]; ok {
		delete(m.selected, m.cursor)
	} else {
		m.selected[m.cursor] = struct{}{}
	}
	m.moveCursor(1)
}

func (m *Model) clearSelection() {
	m.selected = make(map[int]struct{})
}

func (m Model) selectedRows() []int {
	rows := make([]int, 0, len(m.selected))
	for row := range m.selected {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// visibleRange returns the window [start, end) of rows to draw so that the
// cursor stays on screen.
func visibleRange(cursor, total, limit int) (int, int) {
	if limit <= 0 || total <= limit {
		return 0, total
	}
	start := cursor - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > total {
		start = total - limit
	}
	return start, start + limit
}
