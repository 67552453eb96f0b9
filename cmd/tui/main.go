// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package tui

import (
	"fmt"

	"cv/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// RunTUI runs the monitor on the alternate screen until it quits. It returns
// the message the monitor left for the terminal, if any.
func RunTUI(opts ui.Options) (string, error) {
	m := ui.InitialModel(opts)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("monitor failed: %w", err)
	}
	return ui.ExitMessage(final), nil
}
