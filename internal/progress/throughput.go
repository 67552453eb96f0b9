// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package progress

import "sync"

type sampleKey struct {
	pid int
	fd  int
}

// Samples keeps the most recent throughput samples per (pid, fd) so the rate
// shown across monitor refreshes is smoothed.
type Samples struct {
	mu   sync.Mutex
	size int
	data map[sampleKey][]float64
}

// NewSamples keeps up to size samples per descriptor; size < 1 keeps one.
func NewSamples(size int) *Samples {
	if size < 1 {
		size = 1
	}
	return &Samples{size: size, data: make(map[sampleKey][]float64)}
}

// Add records a bytes/second sample and returns the smoothed rate.
func (s *Samples) Add(pid, fd int, rate float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := sampleKey{pid, fd}
	vals := append(s.data[k], rate)
	if len(vals) > s.size {
		vals = vals[len(vals)-s.size:]
	}
	s.data[k] = vals

	avg := MovingAverage(vals, len(vals))
	return avg[len(avg)-1]
}

// Retain drops the samples of descriptors not in keep.
func (s *Samples) Retain(keep map[sampleKey]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if !keep[k] {
			delete(s.data, k)
		}
	}
}

// Len is the number of tracked descriptors.
func (s *Samples) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
