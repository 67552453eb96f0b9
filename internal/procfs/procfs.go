// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package procfs reads the parts of a Linux /proc tree needed to follow the
// progress of a running process: its executable, its command name and the
// regular files and block devices it holds open together with their offsets.
package procfs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// DefaultRoot is the usual procfs mount point.
const DefaultRoot = "/proc"

// ErrInvalidPID is returned for pids that can not name a process.
var ErrInvalidPID = errors.New("pid must be greater than zero")

// FS is a procfs tree rooted at Root. The zero value reads /proc.
type FS struct {
	Root string
}

// New returns an FS for root, or /proc when root is empty.
func New(root string) FS {
	if root == "" {
		root = DefaultRoot
	}
	return FS{Root: root}
}

func (fs FS) root() string {
	if fs.Root == "" {
		return DefaultRoot
	}
	return fs.Root
}

func (fs FS) path(elem ...string) string {
	return filepath.Join(append([]string{fs.root()}, elem...)...)
}

// PIDs lists the numeric entries of the procfs root in ascending order.
func (fs FS) PIDs() ([]int, error) {
	entries, err := os.ReadDir(fs.root())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fs.root(), err)
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(e.Name())
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	return pids, nil
}

// Process is a handle on /proc/<pid>. Nothing is read until a method is called.
type Process struct {
	PID int
	fs  FS
}

// Process returns a handle for pid.
func (fs FS) Process(pid int) (Process, error) {
	if pid <= 0 {
		return Process{}, fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return Process{PID: pid, fs: fs}, nil
}

func (p Process) path(elem ...string) string {
	return p.fs.path(append([]string{strconv.Itoa(p.PID)}, elem...)...)
}

// Exe returns the target of /proc/<pid>/exe, or "" when it can not be read
// (permission denied, kernel thread, process gone).
func (p Process) Exe() string {
	exe, err := os.Readlink(p.path("exe"))
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(exe, 0); i >= 0 {
		exe = exe[:i]
	}
	return exe
}

// ExeName returns the basename of Exe, "" when Exe is unknown.
func (p Process) ExeName() string {
	exe := p.Exe()
	if exe == "" {
		return ""
	}
	return filepath.Base(exe)
}

// Name returns the command name from /proc/<pid>/stat, "" on error.
func (p Process) Name() string {
	data, err := os.ReadFile(p.path("stat"))
	if err != nil {
		return ""
	}
	return parseStatComm(string(data))
}

// parseStatComm extracts the parenthesised comm field. The comm may contain
// spaces and parentheses, so the last ')' closes it.
func parseStatComm(stat string) string {
	open := strings.IndexByte(stat, '(')
	end := strings.LastIndexByte(stat, ')')
	if open < 0 || end <= open {
		fields := strings.Fields(stat)
		if len(fields) < 2 {
			return ""
		}
		return strings.Trim(fields[1], "()")
	}
	return stat[open+1 : end]
}

// FDInfo is the size and offset of one descriptor.
type FDInfo struct {
	FD   int
	Size int64
	Pos  int64
}

// OpenFile is a regular file or block device held open by a process.
type OpenFile struct {
	FD   int
	Path string
	Info FDInfo
}

// FDs lists the descriptor numbers of the process in ascending order, nil
// when the fd directory can not be read.
func (p Process) FDs() []int {
	entries, err := os.ReadDir(p.path("fd"))
	if err != nil {
		return nil
	}
	fds := make([]int, 0, len(entries))
	for _, e := range entries {
		fd, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		fds = append(fds, fd)
	}
	slices.Sort(fds)
	return fds
}

// OpenFiles returns the regular files and block devices the process holds
// open. At most limit entries are returned when limit > 0. Descriptors that
// disappear or can not be inspected are skipped.
func (p Process) OpenFiles(limit int) []OpenFile {
	var files []OpenFile
	for _, fd := range p.FDs() {
		of, err := p.OpenFile(fd)
		if err != nil {
			continue
		}
		files = append(files, of)
		if limit > 0 && len(files) == limit {
			break
		}
	}
	return files
}

// errNotTracked marks descriptors that are neither regular files nor block
// devices (pipes, sockets, ttys).
var errNotTracked = errors.New("not a regular file or block device")

// OpenFile reads one descriptor.
func (p Process) OpenFile(fd int) (OpenFile, error) {
	link := p.path("fd", strconv.Itoa(fd))
	target, err := os.Readlink(link)
	if err != nil {
		return OpenFile{}, err
	}

	info, err := os.Stat(link)
	if err != nil {
		return OpenFile{}, err
	}

	var size int64
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		size = info.Size()
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0:
		size, err = blockDeviceSize(link)
		if err != nil {
			return OpenFile{}, err
		}
	default:
		return OpenFile{}, errNotTracked
	}

	pos, err := p.fdPos(fd)
	if err != nil {
		return OpenFile{}, err
	}
	return OpenFile{
		FD:   fd,
		Path: target,
		Info: FDInfo{FD: fd, Size: size, Pos: pos},
	}, nil
}

// fdPos reads the "pos:" line of /proc/<pid>/fdinfo/<fd>.
func (p Process) fdPos(fd int) (int64, error) {
	f, err := os.Open(p.path("fdinfo", strconv.Itoa(fd)))
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parseFDInfoPos(bufio.NewScanner(f))
}

func parseFDInfoPos(sc *bufio.Scanner) (int64, error) {
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "pos" {
			continue
		}
		return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}
	return 0, errors.New("fdinfo has no pos field")
}

// ProcsByBinaryName returns the processes whose executable basename or
// command name equals name.
func (fs FS) ProcsByBinaryName(name string) ([]Process, error) {
	if name == "" {
		return nil, errors.New("empty binary name")
	}
	pids, err := fs.PIDs()
	if err != nil {
		return nil, err
	}
	var procs []Process
	for _, pid := range pids {
		proc := Process{PID: pid, fs: fs}
		if proc.ExeName() == name || proc.Name() == name {
			procs = append(procs, proc)
		}
	}
	return procs, nil
}
