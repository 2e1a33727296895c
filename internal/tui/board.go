// Package tui is the interactive habit board.
package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"goalquest/internal/engine"
)

// RunBoard blocks until the user quits or ctx is cancelled.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer) error {
	p := tea.NewProgram(newBoardModel(ctx, svc),
		tea.WithOutput(out),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
