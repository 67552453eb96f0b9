// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package main

import (
	"fmt"
	"io"
	"os"

	"cv/cmd/cli"
	"cv/internal/launcher"
)

// exitUnresolved is the status when the cv package can not be located.
const exitUnresolved = 2

type mainer interface {
	Main()
}

func main() {
	os.Exit(run(launcher.DefaultOptions, newMain, os.Stderr))
}

func newMain(res launcher.Resolution) mainer {
	return cli.Main{Package: res}
}

// run resolves the package and hands over to Main on the calling goroutine.
// Main is only constructed once resolution succeeded.
func run(options func() (launcher.Options, error), construct func(launcher.Resolution) mainer, stderr io.Writer) int {
	opts, err := options()
	if err != nil {
		fmt.Fprintf(stderr, "cv: %v\n", err)
		return exitUnresolved
	}
	res, err := launcher.Resolve(opts)
	if err != nil {
		fmt.Fprintf(stderr, "cv: %v\n", err)
		return exitUnresolved
	}
	construct(res).Main()
	return 0
}
