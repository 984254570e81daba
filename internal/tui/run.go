package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive review flow and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Session == nil {
		return fmt.Errorf("session is required")
	}
	if cfg.Client == nil {
		return fmt.Errorf("backend client is required")
	}

	program := tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("review UI failed: %w", err)
	}
	return nil
}
