// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package util

import "strings"

// QuoteArgForShell quotes an argument for safe use in a POSIX shell command.
// It uses single quotes and escapes any internal single quotes. A leading
// "~/" is left outside the quotes so the remote shell still expands it.
func QuoteArgForShell(arg string) string {
	if strings.HasPrefix(arg, "~/") {
		return `~/'` + strings.ReplaceAll(arg[2:], "'", `'\''`) + `'`
	}
	if arg != "" && strings.Trim(arg, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./=:,") == "" {
		return arg
	}
	return `'` + strings.ReplaceAll(arg, "'", `'\''`) + `'`
}

// ShellJoin quotes every argument and joins them into one command line.
func ShellJoin(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = QuoteArgForShell(a)
	}
	return strings.Join(quoted, " ")
}
