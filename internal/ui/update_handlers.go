// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.Refresh):
		// Bumping seq drops the pending tick so scans do not double up.
		m.seq++
		if m.scanning {
			return nil
		}
		m.scanning = true
		return m.scanCmd()
	case key.Matches(msg, m.keymap.PgUp):
		m.viewport.PageUp()
	case key.Matches(msg, m.keymap.PgDown):
		m.viewport.PageDown()
	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}
