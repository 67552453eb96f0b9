// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package progress finds running coreutils-style processes and reports how
// far along they are in the biggest file they hold open, optionally with a
// throughput estimate obtained by sampling the file offset twice.
package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cv/internal/logger"
	"cv/internal/procfs"

	"golang.org/x/sync/semaphore"
)

// maxConcurrentInspections bounds the number of processes whose fd tables
// are read at the same time.
const maxConcurrentInspections = 8

// ErrNoCommands is returned when there is nothing to look for.
var ErrNoCommands = errors.New("no command names to monitor")

// Result is the progress of one monitored process.
type Result struct {
	PID    int    `json:"pid"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	FD     int    `json:"fd,omitempty"`
	Path   string `json:"path,omitempty"`
	Size   int64  `json:"size"`
	Pos    int64  `json:"pos"`
	// Throughput is in bytes per second, valid when HasThroughput is set.
	Throughput    float64       `json:"throughput,omitempty"`
	HasThroughput bool          `json:"has_throughput"`
	ETA           time.Duration `json:"eta,omitempty"`

	sampledAt time.Time
}

// Percent is Pos/Size as a percentage, 0 when either is unknown.
func (r Result) Percent() float64 {
	if r.Pos <= 0 || r.Size <= 0 {
		return 0
	}
	return float64(r.Pos) / float64(r.Size) * 100
}

// Line renders the result the way the plain text output shows it.
func (r Result) Line() string {
	if !r.Active {
		return fmt.Sprintf("[%5d] %s inactive/flushing/streaming/...", r.PID, r.Name)
	}
	line := fmt.Sprintf("[%5d] %s %s %.1f%% (%s / %s)",
		r.PID, r.Name, r.Path, r.Percent(),
		FormatSize(float64(r.Pos)), FormatSize(float64(r.Size)))
	if r.HasThroughput {
		line += fmt.Sprintf(" %s/s", FormatSize(r.Throughput))
		if r.ETA > 0 {
			line += " eta " + FormatETA(r.ETA)
		}
	}
	return line
}

// Source produces scan results. Scanner reads the local procfs; other
// implementations fetch results from elsewhere.
type Source interface {
	Scan(ctx context.Context) ([]Result, error)
	Commands() []string
	Throughput() bool
}

// Options controls a Scanner.
type Options struct {
	Commands    []string
	MaxPIDs     int
	MaxFDPerPID int
	SampleSize  int
	// Throughput enables the second sample taken after Wait.
	Throughput bool
	Wait       time.Duration
}

// Scanner scans procfs for monitored commands. A Scanner keeps throughput
// samples between scans and is safe for sequential reuse.
type Scanner struct {
	fs      procfs.FS
	opts    Options
	samples *Samples

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewScanner returns a Scanner reading fs.
func NewScanner(fs procfs.FS, opts Options) *Scanner {
	return &Scanner{
		fs:      fs,
		opts:    opts,
		samples: NewSamples(opts.SampleSize),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Commands returns the command names the scanner looks for.
func (s *Scanner) Commands() []string {
	return s.opts.Commands
}

// Throughput reports whether scans sample throughput.
func (s *Scanner) Throughput() bool {
	return s.opts.Throughput
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Scan runs one pass. It returns an empty slice when no monitored command is
// running. With throughput enabled it blocks for the configured wait, which
// is cut short by ctx.
func (s *Scanner) Scan(ctx context.Context) ([]Result, error) {
	if len(s.opts.Commands) == 0 {
		return nil, ErrNoCommands
	}

	procs, err := s.findProcesses()
	if err != nil {
		return nil, err
	}
	if len(procs) == 0 {
		s.samples.Retain(nil)
		return []Result{}, nil
	}

	results := s.inspect(ctx, procs)

	if s.opts.Throughput {
		if err := s.sleep(ctx, s.opts.Wait); err != nil {
			return nil, err
		}
		s.resample(procs, results)
	}
	return results, nil
}

// findProcesses collects matching processes in command order, without
// duplicates, capped at MaxPIDs.
func (s *Scanner) findProcesses() ([]procfs.Process, error) {
	var procs []procfs.Process
	seen := make(map[int]bool)
	for _, name := range s.opts.Commands {
		found, err := s.fs.ProcsByBinaryName(name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s: %w", name, err)
		}
		for _, p := range found {
			if seen[p.PID] {
				continue
			}
			seen[p.PID] = true
			procs = append(procs, p)
		}
	}
	if s.opts.MaxPIDs > 0 && len(procs) > s.opts.MaxPIDs {
		procs = procs[:s.opts.MaxPIDs]
	}
	logger.Debug("Matched processes", "count", len(procs), "commands", s.opts.Commands)
	return procs, nil
}

// inspect picks the biggest open file of every process concurrently.
func (s *Scanner) inspect(ctx context.Context, procs []procfs.Process) []Result {
	results := make([]Result, len(procs))
	sem := semaphore.NewWeighted(maxConcurrentInspections)
	var wg sync.WaitGroup

	for i, p := range procs {
		wg.Add(1)
		go func(i int, p procfs.Process) {
			defer wg.Done()
			res := Result{PID: p.PID, Name: displayName(p)}
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = res
				return
			}
			defer sem.Release(1)

			if best, ok := biggest(p.OpenFiles(s.opts.MaxFDPerPID)); ok {
				res.Active = true
				res.FD = best.FD
				res.Path = best.Path
				res.Size = best.Info.Size
				res.Pos = best.Info.Pos
				res.sampledAt = s.now()
			}
			results[i] = res
		}(i, p)
	}
	wg.Wait()
	return results
}

// resample re-reads every chosen descriptor after the wait and derives a
// throughput sample when it still points at the same file.
func (s *Scanner) resample(procs []procfs.Process, results []Result) {
	keep := make(map[sampleKey]bool)
	for i := range results {
		r := &results[i]
		if !r.Active {
			continue
		}
		cur, err := procs[i].OpenFile(r.FD)
		if err != nil || cur.Path != r.Path {
			logger.Debug("Descriptor changed during sampling", "pid", r.PID, "fd", r.FD)
			continue
		}
		now := s.now()
		elapsed := now.Sub(r.sampledAt).Seconds()
		if elapsed <= 0 {
			continue
		}
		rate := float64(cur.Info.Pos-r.Pos) / elapsed

		r.Pos = cur.Info.Pos
		r.Size = cur.Info.Size
		r.sampledAt = now
		r.Throughput = s.samples.Add(r.PID, r.FD, rate)
		r.HasThroughput = true
		if r.Throughput > 0 && r.Size > r.Pos {
			r.ETA = time.Duration(float64(r.Size-r.Pos) / r.Throughput * float64(time.Second))
		}
		keep[sampleKey{r.PID, r.FD}] = true
	}
	s.samples.Retain(keep)
}

// biggest returns the largest file; ties keep the first descriptor.
func biggest(files []procfs.OpenFile) (procfs.OpenFile, bool) {
	if len(files) == 0 {
		return procfs.OpenFile{}, false
	}
	best := files[0]
	for _, f := range files[1:] {
		if f.Info.Size > best.Info.Size {
			best = f
		}
	}
	return best, true
}

func displayName(p procfs.Process) string {
	if name := p.ExeName(); name != "" {
		return name
	}
	return p.Name()
}
