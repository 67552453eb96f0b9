// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pidStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	nameStyle       = lipgloss.NewStyle().Bold(true)
	pathStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	throughputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	barFullStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barEmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)
