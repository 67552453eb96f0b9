// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package ssh

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cv/internal/config"
	"cv/internal/progress"
	"cv/internal/util"
)

// Runner executes a shell command on a host. Manager implements it.
type Runner interface {
	Run(ctx context.Context, host config.SSHHost, command string) ([]byte, error)
}

// RemoteScanner is a progress.Source backed by cv running on a remote host
// with JSON output. Throughput reported by the remote side is smoothed
// locally across refreshes.
type RemoteScanner struct {
	runner  Runner
	host    config.SSHHost
	opts    progress.Options
	samples *progress.Samples
}

// NewRemoteScanner returns a scanner that runs cv on host with opts.
func NewRemoteScanner(runner Runner, host config.SSHHost, opts progress.Options) *RemoteScanner {
	return &RemoteScanner{
		runner:  runner,
		host:    host,
		opts:    opts,
		samples: progress.NewSamples(opts.SampleSize),
	}
}

func (r *RemoteScanner) Commands() []string { return r.opts.Commands }

func (r *RemoteScanner) Throughput() bool { return r.opts.Throughput }

// Host is the remote host name.
func (r *RemoteScanner) Host() string { return r.host.Name }

// Command is the command line run on the remote host.
func (r *RemoteScanner) Command() string {
	binary := r.host.Binary
	if binary == "" {
		binary = "cv"
	}
	args := []string{binary, "--format", "json", "--quiet"}
	for _, c := range r.opts.Commands {
		args = append(args, "--command", c)
	}
	if r.opts.Throughput {
		secs := int(r.opts.Wait.Seconds())
		if secs < 1 {
			secs = 1
		}
		args = append(args, "--wait-delay", strconv.Itoa(secs))
	}
	return util.ShellJoin(args...)
}

// Scan runs cv remotely once and decodes its results.
func (r *RemoteScanner) Scan(ctx context.Context) ([]progress.Result, error) {
	if len(r.opts.Commands) == 0 {
		return nil, progress.ErrNoCommands
	}
	out, err := r.runner.Run(ctx, r.host, r.Command())
	if err != nil {
		return nil, err
	}
	var results []progress.Result
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results from %s: %w", r.host.Name, err)
	}
	if results == nil {
		results = []progress.Result{}
	}
	for i := range results {
		res := &results[i]
		if res.HasThroughput {
			res.Throughput = r.samples.Add(res.PID, res.FD, res.Throughput)
		}
	}
	return results, nil
}
