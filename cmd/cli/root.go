// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"cv/cmd/tui"
	"cv/internal/config"
	"cv/internal/launcher"
	"cv/internal/logger"
	"cv/internal/procfs"
	"cv/internal/progress"
	"cv/internal/ssh"
	"cv/internal/ui"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

type rootFlags struct {
	quiet             bool
	wait              bool
	waitDelay         int
	commands          []string
	monitor           bool
	monitorContinuous bool
	format            string
	host              string
	verbose           bool
}

// app holds the state shared by the commands of one invocation.
type app struct {
	pkg    launcher.Resolution
	stdout io.Writer
	stderr io.Writer

	flags      rootFlags
	cfg        config.Config
	cfgPath    string
	sshManager *ssh.Manager
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cv",
		Short: "Show progress of running coreutils commands",
		Long: `cv looks for running copies of cp, mv, dd, tar, gzip, rsync and friends
and shows how far each one got through the biggest file it has open.

Watched commands and defaults come from the cv package manifest
(cv/cv.yaml or cv/cv.toml) found on the search path.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context())
		},
	}
	rootCmd.SetVersionTemplate("cv version {{.Version}}\n")

	f := rootCmd.PersistentFlags()
	f.BoolVarP(&a.flags.quiet, "quiet", "q", false, "hide some warning/error messages")
	f.BoolVarP(&a.flags.wait, "wait", "w", false, "estimate I/O throughput and ETA (slower display)")
	f.IntVarP(&a.flags.waitDelay, "wait-delay", "W", 0, "wait `secs` seconds for I/O estimation (implies -w)")
	f.StringArrayVarP(&a.flags.commands, "command", "c", nil, "monitor only this command name (repeatable)")
	f.BoolVarP(&a.flags.monitor, "monitor", "m", false, "loop while monitored processes are still running")
	f.BoolVarP(&a.flags.monitorContinuous, "monitor-continuous", "M", false, "like monitor but never stop")
	f.StringVar(&a.flags.format, "format", formatText, "output format: text, table or json")
	f.StringVar(&a.flags.host, "host", "", "run on a remote host from the manifest or ~/.ssh/config")
	f.BoolVar(&a.flags.verbose, "verbose", false, "log debug output to stderr")

	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newHostsCmd(a))
	return rootCmd
}

// setup loads the manifest, applies flag overrides and starts logging.
func (a *app) setup(cmd *cobra.Command) error {
	logger.InitLogger(a.flags.verbose, a.monitorMode())

	a.cfg = config.Default()
	if a.pkg.PackageDir != "" {
		if path, ok := launcher.Manifest(a.pkg.PackageDir); ok {
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			a.cfg, a.cfgPath = cfg, path
		}
	}
	logger.Debug("Configuration loaded", "path", a.cfgPath, "fallback", a.pkg.Fallback())

	flags := cmd.Flags()
	if flags.Changed("wait-delay") {
		if a.flags.waitDelay < 0 {
			return fmt.Errorf("--wait-delay must be non-negative, got %d", a.flags.waitDelay)
		}
		a.flags.wait = true
		// -W 0 enables throughput with the configured delay.
		if a.flags.waitDelay > 0 {
			a.cfg.WaitDelay = a.flags.waitDelay
		}
	}
	if len(a.flags.commands) > 0 {
		a.cfg.Commands = a.flags.commands
	}
	switch a.flags.format {
	case formatText, formatTable, formatJSON:
	default:
		return fmt.Errorf("unknown output format %q (want text, table or json)", a.flags.format)
	}
	if a.monitorMode() && a.flags.format != formatText {
		return fmt.Errorf("--format %s cannot be combined with the monitor", a.flags.format)
	}
	return nil
}

func (a *app) monitorMode() bool {
	return a.flags.monitor || a.flags.monitorContinuous
}

func (a *app) scanOptions() progress.Options {
	return progress.Options{
		Commands:    a.cfg.Commands,
		MaxPIDs:     a.cfg.MaxPIDs,
		MaxFDPerPID: a.cfg.MaxFDPerPID,
		SampleSize:  a.cfg.SampleSize,
		Throughput:  a.flags.wait,
		Wait:        a.cfg.WaitDuration(),
	}
}

// source returns the local scanner, or a remote one when --host is set.
func (a *app) source() (progress.Source, error) {
	opts := a.scanOptions()
	if a.flags.host == "" {
		return progress.NewScanner(procfs.New(a.cfg.ProcRoot), opts), nil
	}
	host, err := a.cfg.LookupHost(a.flags.host)
	if err != nil {
		return nil, err
	}
	if a.sshManager == nil {
		a.sshManager = ssh.NewManager()
	}
	logger.Info("Scanning remote host", "host", host.Name, "hostname", host.Hostname)
	return ssh.NewRemoteScanner(a.sshManager, host, opts), nil
}

func (a *app) close() {
	if a.sshManager != nil {
		a.sshManager.CloseAll()
	}
}

func (a *app) run(ctx context.Context) error {
	src, err := a.source()
	if err != nil {
		return err
	}
	if a.monitorMode() {
		return a.runMonitor(src)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var s *spinner.Spinner
	if src.Throughput() && a.flags.format == formatText && !a.flags.quiet && isTerminal(a.stderr) {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.stderr))
		s.Color("cyan")
		s.Suffix = " Estimating throughput..."
		s.Start()
	}
	results, err := src.Scan(ctx)
	if s != nil {
		s.Stop()
	}
	if errors.Is(err, context.Canceled) {
		logger.Debug("Scan interrupted")
		return nil
	}
	if err != nil {
		return err
	}
	return a.render(results)
}

func (a *app) runMonitor(src progress.Source) error {
	title := "cv"
	if a.flags.host != "" {
		title += " @ " + a.flags.host
	}
	msg, err := tui.RunTUI(ui.Options{
		Source:     src,
		Continuous: a.flags.monitorContinuous,
		Interval:   a.cfg.WaitDuration(),
		Title:      title,
	})
	if err != nil {
		return err
	}
	if msg != "" && !a.flags.quiet {
		fmt.Fprintln(a.stdout, msg)
	}
	return nil
}

func noneRunning(commands []string) string {
	return fmt.Sprintf("No command currently running: %s. exiting", strings.Join(commands, ", "))
}
