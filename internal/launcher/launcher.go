// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package launcher locates the cv application package on disk before the
// application itself is started. The package is a directory named "cv"
// holding the application manifest. It is looked up against an explicit
// search path; if that fails, the directory of the running executable (or
// its parent, for installed bin/ layouts) is added and the lookup is retried
// exactly once.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// PackageName is the directory name the launcher resolves.
const PackageName = "cv"

// ErrImportUnresolved is returned when the package cannot be located even
// after the search path has been extended with the executable's location.
var ErrImportUnresolved = errors.New("unresolved import")

// Layout selects how the executable's directory maps to a search path entry.
type Layout int

const (
	// LayoutAuto adds the parent of a directory named exactly "bin",
	// otherwise the directory itself.
	LayoutAuto Layout = iota
	// LayoutInstalled always adds the parent of the executable's directory.
	LayoutInstalled
	// LayoutCheckout always adds the executable's directory.
	LayoutCheckout
)

func (l Layout) String() string {
	switch l {
	case LayoutInstalled:
		return "installed"
	case LayoutCheckout:
		return "checkout"
	default:
		return "auto"
	}
}

// ParseLayout maps a layout name to a Layout. The empty string means auto.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "installed":
		return LayoutInstalled, nil
	case "checkout", "source":
		return LayoutCheckout, nil
	}
	return LayoutAuto, fmt.Errorf("unknown layout %q (want auto, installed or checkout)", s)
}

// State is the outcome of a resolution.
type State int

const (
	StateUnresolved State = iota
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unresolved"
	}
}

// Finder looks up the package against a search path and returns the
// package directory.
type Finder func(searchPath []string) (string, error)

// Options configures a resolution. The zero value of Executable means the
// running binary.
type Options struct {
	SearchPath []string
	Executable string
	Layout     Layout
	Find       Finder
}

// Resolution describes where the package was found.
type Resolution struct {
	State      State
	PackageDir string
	// SearchPath is the search path the package was found with. It is a
	// copy; the caller's slice is never modified.
	SearchPath []string
	// Added is the directory appended by the fallback, empty if the first
	// lookup succeeded.
	Added      string
	ScriptPath string
}

// Fallback reports whether the executable's location had to be added.
func (r Resolution) Fallback() bool {
	return r.Added != ""
}

// Resolve locates the package. It never touches process-wide state.
func Resolve(opts Options) (Resolution, error) {
	find := opts.Find
	if find == nil {
		find = FindPackage(PackageName)
	}
	searchPath := slices.Clone(opts.SearchPath)

	if dir, err := find(searchPath); err == nil {
		return Resolution{State: StateResolved, PackageDir: dir, SearchPath: searchPath}, nil
	}

	scriptPath, err := executablePath(opts.Executable)
	if err != nil {
		return Resolution{State: StateFailed, SearchPath: searchPath},
			fmt.Errorf("%w: could not determine executable path: %v", ErrImportUnresolved, err)
	}
	added := BaseDir(filepath.Dir(scriptPath), opts.Layout)
	searchPath = append(searchPath, added)

	dir, err := find(searchPath)
	if err != nil {
		return Resolution{State: StateFailed, SearchPath: searchPath, Added: added, ScriptPath: scriptPath},
			fmt.Errorf("%w: %v", ErrImportUnresolved, err)
	}
	return Resolution{
		State:      StateResolved,
		PackageDir: dir,
		SearchPath: searchPath,
		Added:      added,
		ScriptPath: scriptPath,
	}, nil
}

// BaseDir returns the search path entry derived from the executable's
// directory for the given layout.
func BaseDir(scriptDir string, layout Layout) string {
	scriptDir = filepath.Clean(scriptDir)
	switch layout {
	case LayoutInstalled:
		return filepath.Dir(scriptDir)
	case LayoutCheckout:
		return scriptDir
	}
	if IsBinDir(scriptDir) {
		return filepath.Dir(scriptDir)
	}
	return scriptDir
}

// IsBinDir reports whether the final path segment is exactly "bin".
func IsBinDir(dir string) bool {
	return filepath.Base(filepath.Clean(dir)) == "bin"
}

func executablePath(exe string) (string, error) {
	if exe == "" {
		var err error
		exe, err = os.Executable()
		if err != nil {
			return "", err
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
	}
	return filepath.Abs(exe)
}
