// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ui

import (
	"time"

	"cv/internal/progress"
)

// scanFinishedMsg carries the outcome of one scan.
type scanFinishedMsg struct {
	results []progress.Result
	err     error
	at      time.Time
}

// tickMsg asks for the next scan. Ticks from before a manual refresh carry an
// old seq and are dropped.
type tickMsg struct{ seq int }
