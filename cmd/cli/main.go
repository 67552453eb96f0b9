// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package cli is the cv command line: one-shot scans, the monitor, the HTTP
// API and remote scans over SSH.
package cli

import (
	"io"
	"os"

	"cv/internal/launcher"
	"cv/internal/logger"
)

// Version is set at build time with -ldflags "-X cv/cmd/cli.Version=...".
var Version = "dev"

// Main is the application entry point. Package is where the launcher found
// the cv package; the zero value runs with built-in defaults.
type Main struct {
	Package launcher.Resolution
}

// Main runs cv with the process arguments and exits non-zero on failure.
func (m Main) Main() {
	if err := m.Execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Execute runs cv with args, writing to stdout and stderr.
func (m Main) Execute(args []string, stdout, stderr io.Writer) error {
	a := &app{pkg: m.Package, stdout: stdout, stderr: stderr}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		logger.Error("Command failed", "error", err)
		errorColor.Fprintf(stderr, "cv: %v\n", err)
	}
	return err
}
