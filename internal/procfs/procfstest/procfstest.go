// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package procfstest builds fake /proc trees for tests.
package procfstest

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// Tree is a fake procfs rooted in a temporary directory.
type Tree struct {
	t    testing.TB
	Root string
}

// New creates an empty tree.
func New(t testing.TB) *Tree {
	t.Helper()
	return &Tree{t: t, Root: t.TempDir()}
}

func (tr *Tree) must(err error) {
	tr.t.Helper()
	if err != nil {
		tr.t.Fatal(err)
	}
}

// AddProcess creates /proc/<pid> with a stat line for comm and, if exe is
// not empty, an exe link.
func (tr *Tree) AddProcess(pid int, comm, exe string) {
	tr.t.Helper()
	dir := filepath.Join(tr.Root, strconv.Itoa(pid))
	tr.must(os.MkdirAll(filepath.Join(dir, "fd"), 0o755))
	tr.must(os.MkdirAll(filepath.Join(dir, "fdinfo"), 0o755))
	stat := strconv.Itoa(pid) + " (" + comm + ") R 1 1 1 0 -1"
	tr.must(os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
	if exe != "" {
		tr.must(os.Symlink(exe, filepath.Join(dir, "exe")))
	}
}

// AddFile creates a real file of the given size and opens it as fd in pid at
// offset pos. It returns the file path.
func (tr *Tree) AddFile(pid, fd int, size, pos int64) string {
	tr.t.Helper()
	path := filepath.Join(tr.t.TempDir(), "file-"+strconv.Itoa(pid)+"-"+strconv.Itoa(fd))
	f, err := os.Create(path)
	tr.must(err)
	tr.must(f.Truncate(size))
	tr.must(f.Close())
	tr.LinkFD(pid, fd, path)
	tr.SetPos(pid, fd, pos)
	return path
}

// LinkFD points /proc/<pid>/fd/<fd> at target.
func (tr *Tree) LinkFD(pid, fd int, target string) {
	tr.t.Helper()
	link := filepath.Join(tr.Root, strconv.Itoa(pid), "fd", strconv.Itoa(fd))
	_ = os.Remove(link)
	tr.must(os.Symlink(target, link))
}

// SetPos rewrites /proc/<pid>/fdinfo/<fd>.
func (tr *Tree) SetPos(pid, fd int, pos int64) {
	tr.t.Helper()
	info := "pos:\t" + strconv.FormatInt(pos, 10) + "\nflags:\t0100000\nmnt_id:\t29\n"
	path := filepath.Join(tr.Root, strconv.Itoa(pid), "fdinfo", strconv.Itoa(fd))
	tr.must(os.WriteFile(path, []byte(info), 0o644))
}

// RemoveProcess deletes /proc/<pid>.
func (tr *Tree) RemoveProcess(pid int) {
	tr.t.Helper()
	tr.must(os.RemoveAll(filepath.Join(tr.Root, strconv.Itoa(pid))))
}
