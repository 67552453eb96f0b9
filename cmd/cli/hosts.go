// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"strconv"

	"cv/internal/config"
	"cv/internal/logger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newHostsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hosts",
		Short: "List hosts usable with --host",
		Long: `Lists the ssh_hosts of the manifest followed by the hosts of ~/.ssh/config
that are not already configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := hostRows(a.cfg)
			if len(rows) == 0 {
				if !a.flags.quiet {
					fmt.Fprintln(a.stdout, "No hosts configured.")
				}
				return nil
			}
			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"NAME", "ADDRESS", "USER", "SOURCE"})
			for _, r := range rows {
				tw.AppendRow(r)
			}
			_, err := fmt.Fprintln(a.stdout, tw.Render())
			return err
		},
	}
}

func hostRows(cfg config.Config) []table.Row {
	var rows []table.Row
	seen := make(map[string]bool)
	for _, h := range cfg.SSHHosts {
		seen[h.Name] = true
		rows = append(rows, table.Row{h.Name, hostAddress(h), h.User, "manifest"})
	}

	potential, err := config.ParseSSHConfig()
	if err != nil {
		logger.Debug("Skipping ~/.ssh/config", "error", err)
		return rows
	}
	for _, p := range potential {
		if seen[p.Alias] {
			continue
		}
		h, err := p.ToSSHHost()
		if err != nil {
			continue
		}
		rows = append(rows, table.Row{h.Name, hostAddress(h), h.User, "ssh config"})
	}
	return rows
}

func hostAddress(h config.SSHHost) string {
	if h.Port == 0 || h.Port == 22 {
		return h.Hostname
	}
	return h.Hostname + ":" + strconv.Itoa(h.Port)
}
