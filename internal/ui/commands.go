package ui

import (
	"context"

	"lazyban/internal/banlist"

	tea "github.com/charmbracelet/bubbletea"
)

type loadedMsg struct {
	editor *banlist.Editor
	err    error
}

type savedMsg struct {
	result banlist.Result
	err    error
}

func loadCmd(ctx context.Context, store banlist.Session) tea.Cmd {
	return func() tea.Msg {
		editor, err := banlist.Load(ctx, store)
		return loadedMsg{editor: editor, err: err}
	}
}

func confirmCmd(ctx context.Context, store banlist.Session, editor *banlist.Editor) tea.Cmd {
	return func() tea.Msg {
		result, err := editor.Confirm(ctx, store)
		return savedMsg{result: result, err: err}
	}
}
