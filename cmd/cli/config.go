// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"strings"

	"cv/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the cv configuration",
		Long: `Shows the configuration cv runs with: the package manifest found on the
search path with command-line overrides applied.`,
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgPath
			if path == "" {
				path = "cv.yaml"
			}
			data, err := config.Marshal(a.cfg, path)
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = a.stdout.Write(data)
			return err
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where the cv package and manifest were found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			colorize := isTerminal(a.stdout)
			manifest := a.cfgPath
			if manifest == "" {
				manifest = paint(dimColor, "(none, using defaults)", colorize)
			}
			pkgDir := a.pkg.PackageDir
			if pkgDir == "" {
				pkgDir = paint(dimColor, "(not resolved)", colorize)
			}
			fmt.Fprintf(a.stdout, "package:     %s\n", pkgDir)
			fmt.Fprintf(a.stdout, "manifest:    %s\n", manifest)
			if a.pkg.Fallback() {
				fmt.Fprintf(a.stdout, "added:       %s\n", a.pkg.Added)
			}
			fmt.Fprintf(a.stdout, "search path: %s\n", strings.Join(a.pkg.SearchPath, ", "))
			return nil
		},
	})

	return configCmd
}
