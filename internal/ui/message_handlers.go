// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv/internal/logger"
	"cv/internal/progress"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

func handleWindowSizeMsg(m *model, msg tea.WindowSizeMsg) tea.Cmd {
	m.width = msg.Width
	m.height = msg.Height

	bodyHeight := m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(m.width, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = bodyHeight
	}
	m.help.Width = m.width
	return nil
}

func handleScanFinishedMsg(m *model, msg scanFinishedMsg) tea.Cmd {
	m.scanning = false
	if m.currentState == stateDone {
		return nil
	}
	m.lastScan = msg.at

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return nil
		}
		if errors.Is(msg.err, progress.ErrNoCommands) {
			m.exitMessage = msg.err.Error()
			return m.quit()
		}
		logger.Error("Scan failed", "error", msg.err)
		m.lastError = msg.err
		return scheduleCmd(m.seq, m.opts.Interval)
	}

	m.lastError = nil
	m.results = msg.results

	if len(m.results) == 0 {
		if !m.opts.Continuous {
			m.exitMessage = fmt.Sprintf("No command currently running: %s. exiting",
				strings.Join(m.opts.Source.Commands(), ", "))
			return m.quit()
		}
		m.currentState = stateIdle
		return scheduleCmd(m.seq, m.opts.Interval)
	}

	m.currentState = stateShowing
	if m.opts.Source.Throughput() {
		// The scan itself already waited for the sampling delay.
		return scheduleCmd(m.seq, minInterval)
	}
	return scheduleCmd(m.seq, m.opts.Interval)
}

func handleTickMsg(m *model, msg tickMsg) tea.Cmd {
	if msg.seq != m.seq || m.scanning || m.currentState == stateDone {
		return nil
	}
	m.scanning = true
	return m.scanCmd()
}
