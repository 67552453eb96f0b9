// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package progress

import (
	"fmt"
	"time"
)

var sizeUnits = []string{"bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count with one decimal in binary units,
// e.g. "0.0 bytes", "1.5 KB", "3.2 GB". Anything of 1024 GB or more is
// shown in TB.
func FormatSize(n float64) string {
	for _, unit := range sizeUnits {
		if n < 1024.0 && n > -1024.0 {
			return fmt.Sprintf("%3.1f %s", n, unit)
		}
		n /= 1024.0
	}
	return fmt.Sprintf("%3.1f %s", n, "TB")
}

// FormatETA renders a remaining duration rounded to the second. Zero or
// negative durations render as "-".
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

// MovingAverage returns the averages of every window of n consecutive
// values. It returns nothing when there are fewer than n values.
//
//	MovingAverage([40, 30, 50, 46, 39, 44], 3) -> [40, 42, 45, 43]
func MovingAverage(values []float64, n int) []float64 {
	if n <= 0 || len(values) < n {
		return nil
	}
	out := make([]float64, 0, len(values)-n+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out = append(out, sum/float64(n))
		}
	}
	return out
}
