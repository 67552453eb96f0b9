// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestNames are the files that mark a directory as the package, in order
// of preference.
var ManifestNames = []string{"cv.yaml", "cv.yml", "cv.toml"}

// Environment variables consulted by DefaultOptions.
const (
	EnvSearchPath = "CV_PATH"
	EnvLayout     = "CV_LAYOUT"
)

// FindPackage returns a Finder that looks for <entry>/<name>/<manifest> in
// each search path entry, first match wins.
func FindPackage(name string) Finder {
	return func(searchPath []string) (string, error) {
		for _, entry := range searchPath {
			if entry == "" {
				continue
			}
			dir := filepath.Join(entry, name)
			if _, ok := Manifest(dir); ok {
				return dir, nil
			}
		}
		return "", fmt.Errorf("package %q not found in search path [%s]", name, strings.Join(searchPath, ", "))
	}
}

// Manifest returns the manifest file inside a package directory.
func Manifest(pkgDir string) (string, bool) {
	for _, name := range ManifestNames {
		p := filepath.Join(pkgDir, name)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, true
		}
	}
	return "", false
}

// DefaultSearchPath builds the initial search path: CV_PATH entries, the user
// config directory and /etc.
func DefaultSearchPath() []string {
	var path []string
	if env := os.Getenv(EnvSearchPath); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				path = append(path, p)
			}
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path = append(path, dir)
	}
	return append(path, "/etc")
}

// DefaultOptions reads the search path and layout from the environment.
func DefaultOptions() (Options, error) {
	layout, err := ParseLayout(os.Getenv(EnvLayout))
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", EnvLayout, err)
	}
	return Options{
		SearchPath: DefaultSearchPath(),
		Layout:     layout,
		Find:       FindPackage(PackageName),
	}, nil
}
