// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"fmt"
	"strings"

	"cv/internal/progress"
)

func (m *model) renderHeader() string {
	title := titleStyle.Render(m.opts.Title + ": " + strings.Join(m.opts.Source.Commands(), ", "))

	var status string
	switch {
	case m.lastError != nil:
		status = errorStyle.Render(fmt.Sprintf("Scan failed: %v", m.lastError))
	case m.currentState == stateScanning:
		status = statusStyle.Render("Scanning...")
	case m.currentState == stateIdle:
		status = idleStyle.Render("No command currently running, waiting...")
	default:
		status = statusStyle.Render(fmt.Sprintf("%d running, updated %s",
			len(m.results), m.lastScan.Format("15:04:05")))
	}
	if m.scanning && m.currentState != stateScanning {
		status += idleStyle.Render(" (refreshing)")
	}
	return title + "\n" + status
}

func (m *model) renderFooter() string {
	return "\n" + footerStyle.Render(m.help.View(m.keymap))
}

func (m *model) renderResults() string {
	if len(m.results) == 0 {
		return ""
	}
	var b strings.Builder
	for i, res := range m.results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderResult(res))
	}
	return b.String()
}

// renderResult draws one process as a summary line with a bar, and the
// file path underneath.
func (m *model) renderResult(res progress.Result) string {
	head := pidStyle.Render(fmt.Sprintf("[%5d]", res.PID)) + " " + nameStyle.Render(res.Name)
	if !res.Active {
		return head + " " + idleStyle.Render("inactive/flushing/streaming/...")
	}

	line := head + " " + renderBar(res.Percent(), m.barWidth()) +
		fmt.Sprintf(" %5.1f%% %s / %s", res.Percent(),
			progress.FormatSize(float64(res.Pos)), progress.FormatSize(float64(res.Size)))
	if res.HasThroughput {
		rate := progress.FormatSize(res.Throughput) + "/s"
		if res.ETA > 0 {
			rate += " eta " + progress.FormatETA(res.ETA)
		}
		line += " " + throughputStyle.Render(rate)
	}
	return line + "\n        " + pathStyle.Render(res.Path)
}

func (m *model) barWidth() int {
	w := m.width / 3
	if w < barMinWidth {
		return barMinWidth
	}
	if w > barMaxWidth {
		return barMaxWidth
	}
	return w
}

// renderBar draws a bar width cells wide filled to percent.
func renderBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}
