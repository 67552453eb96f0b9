// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cv/internal/progress"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

var (
	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	pidColor        = color.New(color.FgBlue)
	nameColor       = color.New(color.Bold)
	throughputColor = color.New(color.FgYellow)
	dimColor        = color.New(color.Faint)
)

// isTerminal reports whether w is a terminal. Anything that is not an
// *os.File counts as a pipe.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(c *color.Color, s string, colorize bool) string {
	if !colorize {
		return s
	}
	return c.Sprint(s)
}

func (a *app) render(results []progress.Result) error {
	switch a.flags.format {
	case formatJSON:
		return renderJSON(a.stdout, results)
	case formatTable:
		if len(results) == 0 {
			a.printNoneRunning()
			return nil
		}
		_, err := fmt.Fprintln(a.stdout, renderTable(results))
		return err
	default:
		if len(results) == 0 {
			a.printNoneRunning()
			return nil
		}
		colorize := isTerminal(a.stdout)
		for _, res := range results {
			if _, err := fmt.Fprintln(a.stdout, textLine(res, colorize)); err != nil {
				return err
			}
		}
		return nil
	}
}

func (a *app) printNoneRunning() {
	if a.flags.quiet {
		return
	}
	fmt.Fprintln(a.stdout, paint(dimColor, noneRunning(a.cfg.Commands), isTerminal(a.stdout)))
}

// textLine is Result.Line with colours.
func textLine(res progress.Result, colorize bool) string {
	if !colorize {
		return res.Line()
	}
	head := pidColor.Sprintf("[%5d]", res.PID) + " " + nameColor.Sprint(res.Name)
	if !res.Active {
		return head + " " + dimColor.Sprint("inactive/flushing/streaming/...")
	}
	line := fmt.Sprintf("%s %s %.1f%% (%s / %s)", head, res.Path, res.Percent(),
		progress.FormatSize(float64(res.Pos)), progress.FormatSize(float64(res.Size)))
	if res.HasThroughput {
		rate := progress.FormatSize(res.Throughput) + "/s"
		if res.ETA > 0 {
			rate += " eta " + progress.FormatETA(res.ETA)
		}
		line += " " + throughputColor.Sprint(rate)
	}
	return line
}

func renderTable(results []progress.Result) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"PID", "NAME", "FILE", "PROGRESS", "POSITION", "SIZE", "THROUGHPUT", "ETA"})

	for _, res := range results {
		if !res.Active {
			tw.AppendRow(table.Row{res.PID, res.Name, "inactive/flushing/streaming/...", "", "", "", "", ""})
			continue
		}
		throughput, eta := "", ""
		if res.HasThroughput {
			throughput = progress.FormatSize(res.Throughput) + "/s"
			eta = progress.FormatETA(res.ETA)
		}
		tw.AppendRow(table.Row{
			res.PID,
			res.Name,
			res.Path,
			fmt.Sprintf("%.1f%%", res.Percent()),
			progress.FormatSize(float64(res.Pos)),
			progress.FormatSize(float64(res.Size)),
			throughput,
			eta,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func renderJSON(w io.Writer, results []progress.Result) error {
	if results == nil {
		results = []progress.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
