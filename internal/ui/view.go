package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	markedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	inputStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	buttonStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62")).Padding(0, 1)
	buttonOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Background(lipgloss.Color("237")).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("250")).Padding(0, 1)
	mainStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	popupStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(1, 2)
)

const (
	defaultWidth  = 64
	defaultHeight = 20
	// title, blank, filter, blank, input, buttons, error, status, borders
	chromeLines = 11
)

func (m Model) View() string {
	width := defaultWidth
	if m.width > 0 {
		width = m.width - 2
		if width < 40 {
			width = 40
		}
	}
	height := defaultHeight
	if m.height > 0 {
		height = m.height
	}

	if m.warning != "" {
		return m.place(width, height, renderWarning(m.warning))
	}
	if m.helpMode {
		return m.place(width, height, renderHelp())
	}

	var b strings.Builder
	b.WriteString(renderTitle(m))
	b.WriteString("\n\n")
	b.WriteString(renderRows(m, height-chromeLines))
	b.WriteString("\n")
	b.WriteString(renderFilter(m))
	b.WriteString("\n\n")
	b.WriteString(renderInput(m))
	b.WriteString("\n")
	b.WriteString(renderButtons(m))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	} else if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(m.notice))
	}

	main := mainStyle.Width(width).Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, main, renderStatus(m))
}

func (m Model) place(width, height int, popup string) string {
	return lipgloss.Place(width+2, height, lipgloss.Center, lipgloss.Center, popup)
}

func renderTitle(m Model) string {
	title := titleStyle.Render(m.title)
	if m.editor != nil {
		title += dimStyle.Render(fmt.Sprintf("  %d total · %s", m.editor.Len(), m.editor.Order()))
		if m.editor.Modified() {
			title += markedStyle.Render("  modified")
		}
	}
	if m.loading || m.saving {
		title += " " + m.spinner.View()
	}
	return title
}

func renderRows(m Model, limit int) string {
	if m.loading {
		return dimStyle.Render("Loading ban list...")
	}
	if m.editor == nil {
		return dimStyle.Render("Ban list unavailable")
	}
	rows := m.rows()
	if len(rows) == 0 {
		if m.editor.Filter() != "" {
			return dimStyle.Render("No addresses match the filter")
		}
		return dimStyle.Render("No banned addresses")
	}

	if limit < 3 {
		limit = 3
	}
	start, end := visibleRange(m.cursor, len(rows), limit)
	lines := make([]string, 0, end-start+2)
	if start > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
	}
	for i := start; i < end; i++ {
		lines = append(lines, renderRow(m, i, rows[i]))
	}
	if end < len(rows) {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(rows)-end)))
	}
	return strings.Join(lines, "\n")
}

func renderRow(m Model, i int, ip string) string {
	prefix := "  "
	if i == m.cursor && m.focus == focusList {
		prefix = "› "
	}
	mark := "[ ]"
	if _, ok := m.selected[i]; ok {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %-39s", mark, ip)
	if m.countries != nil {
		if cc := m.countries.Country(ip); cc != "" {
			line += " " + dimStyle.Render(cc)
		}
	}
	switch {
	case i == m.cursor && m.focus == focusList:
		line = selectedStyle.Render(line)
	case mark == "[x]":
		line = markedStyle.Render(line)
	}
	return prefix + line
}

func renderFilter(m Model) string {
	if m.filterMode {
		return "Filter: " + inputStyle.Render(m.filter.View())
	}
	if m.editor != nil && m.editor.Filter() != "" {
		return dimStyle.Render(fmt.Sprintf("Filter: %s (%d shown)", m.editor.Filter(), len(m.rows())))
	}
	return ""
}

func renderInput(m Model) string {
	label := "IP: "
	if m.focus == focusInput {
		label = titleStyle.Render(label)
	}
	add := buttonOffStyle.Render("Add")
	if m.canAdd() {
		add = buttonStyle.Render("Add")
	}
	return label + inputStyle.Render(m.input.View()) + " " + add
}

func renderButtons(m Model) string {
	ok := buttonStyle.Render("OK")
	if m.saving {
		ok = buttonOffStyle.Render("Saving")
	}
	return ok + " " + buttonOffStyle.Render("Cancel")
}

func renderStatus(m Model) string {
	var status string
	switch {
	case m.saving:
		status = "Writing ban list..."
	case m.filterMode:
		status = "enter apply · esc clear"
	case m.focus == focusInput:
		status = "enter add · tab list · ctrl+s OK · esc cancel"
	default:
		status = "space select · d delete · s sort · / filter · ? help · ctrl+s OK · esc cancel"
	}
	return statusStyle.Render(status)
}

func renderWarning(text string) string {
	body := titleStyle.Render("Warning") + "\n\n" + text + "\n\n" + dimStyle.Render("enter/esc to dismiss")
	return popupStyle.Render(body)
}

func renderHelp() string {
	lines := []string{
		titleStyle.Render("Keys"),
		"",
		"tab         switch between field and list",
		"enter       add address (field) / OK (list)",
		"j/k ↑/↓     move",
		"space       toggle selection",
		"d, delete   remove selected addresses",
		"s           toggle sort order",
		"/           filter the list",
		"ctrl+s      OK, write changes",
		"esc         cancel",
		"",
		dimStyle.Render("esc or ? to close"),
	}
	return popupStyle.Render(strings.Join(lines, "\n"))
}
