package ui

import (
	"context"
	"log/slog"

	"lazyban/internal/banlist"
	"lazyban/internal/uistate"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// CountryLookup annotates rows with a country code. Implementations return
// "" when the country is unknown.
type CountryLookup interface {
	Country(ip string) string
}

type Options struct {
	NoColor   bool
	Order     banlist.Order
	StatePath string
	Countries CountryLookup
	Title     string
}

type Model struct {
	ctx       context.Context
	store     banlist.Session
	editor    *banlist.Editor
	countries CountryLookup
	order     banlist.Order
	title     string

	statePath string
	state     uistate.State

	focus    focusArea
	cursor   int
	selected map[int]struct{}

	warning    string
	helpMode   bool
	filterMode bool
	loading    bool
	saving     bool
	notice     string
	err        error
	result     banlist.Result

	width   int
	height  int
	spinner spinner.Model
	input   textinput.Model
	filter  textinput.Model
}

func NewModel(ctx context.Context, store banlist.Session, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	ti.Prompt = ""
	ti.Placeholder = "IPv4 or IPv6 address"
	ti.Focus()

	fi := textinput.New()
	fi.CharLimit = 64
	fi.Width = 24
	fi.Prompt = ""
	fi.Placeholder = "substring"

	title := opts.Title
	if title == "" {
		title = "Banned IP addresses"
	}

	m := Model{
		ctx:       ctx,
		store:     store,
		countries: opts.Countries,
		order:     opts.Order,
		title:     title,
		statePath: opts.StatePath,
		focus:     focusInput,
		selected:  make(map[int]struct{}),
		loading:   true,
		result:    banlist.Rejected,
		spinner:   sp,
		input:     ti,
		filter:    fi,
	}
	m.restoreSize()
	return m
}

func (m *Model) restoreSize() {
	if m.statePath == "" {
		return
	}
	state, err := uistate.Load(m.statePath)
	if err != nil {
		slog.Warn("load editor state failed", "path", m.statePath, "error", err)
	}
	m.state = state
	if size, ok := state.Size(uistate.EditorSizeKey); ok {
		m.width = size.Width
		m.height = size.Height
	}
}

func (m Model) saveSize() error {
	if m.statePath == "" || m.width <= 0 || m.height <= 0 {
		return nil
	}
	state := m.state
	state.SetSize(uistate.EditorSizeKey, m.width, m.height)
	return state.Save(m.statePath)
}

func (m Model) rows() []string {
	if m.editor == nil {
		return nil
	}
	return m.editor.Rows()
}

func (m Model) canAdd() bool {
	return m.editor != nil && m.editor.CanAdd(m.input.Value())
}
