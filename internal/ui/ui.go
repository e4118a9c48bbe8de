package ui

import (
	"context"
	"log/slog"

	"lazyban/internal/banlist"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// RunWithContext opens the ban list editor and blocks until it is closed.
// The returned result is Accepted only when an edited list was written back
// to the session.
func RunWithContext(ctx context.Context, store banlist.Session, opts Options) (banlist.Result, error) {
	if opts.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	model := NewModel(ctx, store, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	m, err := program.Run()
	finalModel, ok := m.(Model)
	if !ok {
		return banlist.Rejected, err
	}
	if saveErr := finalModel.saveSize(); saveErr != nil {
		slog.Warn("save editor size failed", "error", saveErr)
	}
	return finalModel.result, err
}

func Run(store banlist.Session, opts Options) (banlist.Result, error) {
	return RunWithContext(context.Background(), store, opts)
}
