// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// scanCmd runs one scan off the UI goroutine. With throughput enabled the
// scan blocks for the sampling wait, which the model's context cuts short on
// quit.
func (m *model) scanCmd() tea.Cmd {
	source := m.opts.Source
	ctx := m.ctx
	return func() tea.Msg {
		results, err := source.Scan(ctx)
		return scanFinishedMsg{results: results, err: err, at: time.Now()}
	}
}

// scheduleCmd fires the next scan after d.
func scheduleCmd(seq int, d time.Duration) tea.Cmd {
	if d < minInterval {
		d = minInterval
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}
