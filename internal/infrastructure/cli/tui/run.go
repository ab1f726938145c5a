package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the full-screen console until the user quits. watch, when set,
// runs for the lifetime of the program and reports personality reloads.
func Run(ctx context.Context, opts Options, watch func(ctx context.Context, onReload func())) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	done := make(chan struct{})
	if watch != nil {
		go func() {
			defer close(done)
			watch(ctx, func() { program.Send(ReloadedMsg{}) })
		}()
	} else {
		close(done)
	}

	_, err := program.Run()
	cancel()
	<-done
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
