// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package ui implements the full-screen monitor shown by cv -m and cv -M.
package ui

import (
	"context"
	"time"

	"cv/internal/progress"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures the monitor.
type Options struct {
	Source progress.Source
	// Continuous keeps the monitor open when nothing is running (-M).
	Continuous bool
	// Interval is the pause between scans when throughput is off.
	Interval time.Duration
	// Title is shown in the header, e.g. "cv" or "cv @ nas".
	Title string
}

type model struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	keymap   KeyMap
	help     help.Model
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	currentState state
	results      []progress.Result
	lastError    error
	lastScan     time.Time
	scanning     bool
	seq          int

	exitMessage string
}

// InitialModel returns the monitor model for opts.
func InitialModel(opts Options) model {
	if opts.Title == "" {
		opts.Title = "cv"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return model{
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
		keymap:       DefaultKeyMap,
		help:         help.New(),
		currentState: stateScanning,
	}
}

func (m *model) Init() tea.Cmd {
	m.scanning = true
	return m.scanCmd()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		cmd = handleWindowSizeMsg(m, msg)
	case tea.KeyMsg:
		cmd = m.handleKeys(msg)
	case scanFinishedMsg:
		cmd = handleScanFinishedMsg(m, msg)
	case tickMsg:
		cmd = handleTickMsg(m, msg)
	}

	if m.ready {
		m.viewport.SetContent(m.renderResults())
	}
	return m, cmd
}

func (m *model) View() string {
	if m.currentState == stateDone {
		return ""
	}
	if !m.ready {
		return statusStyle.Render("Initializing...")
	}
	return m.renderHeader() + "\n" + m.viewport.View() + "\n" + m.renderFooter()
}

// quit stops any scan in flight and ends the program.
func (m *model) quit() tea.Cmd {
	m.cancel()
	m.currentState = stateDone
	return tea.Quit
}

// ExitMessage returns the message the monitor wants printed after it exits,
// or "" when there is none.
func ExitMessage(m tea.Model) string {
	if mm, ok := m.(*model); ok {
		return mm.exitMessage
	}
	return ""
}
