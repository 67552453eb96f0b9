// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import "time"

// state represents the different phases of the monitor.
type state int

const (
	stateScanning state = iota
	stateShowing
	stateIdle // nothing running, waiting for the next scan (continuous mode)
	stateDone
)

const (
	headerHeight = 2 // title line plus status line
	footerHeight = 2
	barMinWidth  = 10
	barMaxWidth  = 40

	// minInterval keeps the refresh from spinning when no wait is configured.
	minInterval = 200 * time.Millisecond
)
