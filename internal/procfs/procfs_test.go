package procfs

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
)

// fakeProc builds a minimal /proc-like tree.
type fakeProc struct {
	t    *testing.T
	root string
}

func newFakeProc(t *testing.T) *fakeProc {
	t.Helper()
	return &fakeProc{t: t, root: t.TempDir()}
}

func (f *fakeProc) must(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatal(err)
	}
}

func (f *fakeProc) addProcess(pid, comm, exe string) string {
	dir := filepath.Join(f.root, pid)
	f.must(os.MkdirAll(filepath.Join(dir, "fd"), 0o755))
	f.must(os.MkdirAll(filepath.Join(dir, "fdinfo"), 0o755))
	f.must(os.WriteFile(filepath.Join(dir, "stat"), []byte(pid+" ("+comm+") R 1 1 1 0 -1"), 0o644))
	if exe != "" {
		f.must(os.Symlink(exe, filepath.Join(dir, "exe")))
	}
	return dir
}

func (f *fakeProc) addFD(pid, fd, target, pos string) {
	dir := filepath.Join(f.root, pid)
	f.must(os.Symlink(target, filepath.Join(dir, "fd", fd)))
	if pos != "" {
		f.must(os.WriteFile(filepath.Join(dir, "fdinfo", fd), []byte("pos:\t"+pos+"\nflags:\t0100002\nmnt_id:\t29\n"), 0o644))
	}
}

func TestPIDs(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("1", "init", "/sbin/init")
	f.addProcess("42", "cp", "/usr/bin/cp")
	f.addProcess("1000", "dd", "/usr/bin/dd")
	f.addProcess("900", "tar", "/usr/bin/tar")
	f.must(os.MkdirAll(filepath.Join(f.root, "self"), 0o755))
	f.must(os.WriteFile(filepath.Join(f.root, "99"), nil, 0o644))

	pids, err := New(f.root).PIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(pids, []int{1, 42, 900, 1000}) {
		t.Fatalf("pids = %v", pids)
	}
}

func TestProcessRejectsInvalidPID(t *testing.T) {
	fs := New(t.TempDir())
	for _, pid := range []int{0, -1} {
		if _, err := fs.Process(pid); !errors.Is(err, ErrInvalidPID) {
			t.Errorf("Process(%d) err = %v", pid, err)
		}
	}
}

func TestProcessExeAndName(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("42", "cp", "/usr/bin/cp")
	f.addProcess("43", "my prog (x)", "")

	fs := New(f.root)
	p, err := fs.Process(42)
	if err != nil {
		t.Fatal(err)
	}
	if p.Exe() != "/usr/bin/cp" || p.ExeName() != "cp" || p.Name() != "cp" {
		t.Fatalf("exe=%q exeName=%q name=%q", p.Exe(), p.ExeName(), p.Name())
	}

	q, _ := fs.Process(43)
	if q.Exe() != "" || q.ExeName() != "" {
		t.Fatalf("expected empty exe, got %q", q.Exe())
	}
	if q.Name() != "my prog (x)" {
		t.Fatalf("name = %q", q.Name())
	}

	gone, _ := fs.Process(7)
	if gone.Name() != "" || gone.OpenFiles(0) != nil {
		t.Fatal("missing process should read as empty")
	}
}

func TestOpenFiles(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("42", "dd", "/usr/bin/dd")

	data := filepath.Join(t.TempDir(), "image.iso")
	f.must(os.WriteFile(data, []byte(strings.Repeat("x", 1000)), 0o644))
	f.addFD("42", "3", data, "250")
	f.addFD("42", "4", t.TempDir(), "0")
	f.addFD("42", "5", filepath.Join(t.TempDir(), "deleted"), "0")
	f.addFD("42", "6", data, "")

	p, _ := New(f.root).Process(42)
	files := p.OpenFiles(0)
	if len(files) != 1 {
		t.Fatalf("open files = %+v", files)
	}
	of := files[0]
	if of.FD != 3 || of.Path != data || of.Info.Size != 1000 || of.Info.Pos != 250 {
		t.Fatalf("unexpected open file %+v", of)
	}
}

func TestFDsNumericOrder(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("7", "cp", "/usr/bin/cp")
	target := filepath.Join(t.TempDir(), "data")
	f.must(os.WriteFile(target, []byte("x"), 0o644))
	for _, fd := range []string{"10", "3", "100", "9"} {
		f.addFD("7", fd, target, "0")
	}

	p, err := New(f.root).Process(7)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.FDs(); !slices.Equal(got, []int{3, 9, 10, 100}) {
		t.Fatalf("fds = %v", got)
	}
	files := p.OpenFiles(2)
	if len(files) != 2 || files[0].FD != 3 || files[1].FD != 9 {
		t.Fatalf("limited files = %+v", files)
	}
}

func TestOpenFilesLimit(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("42", "cat", "/usr/bin/cat")
	data := filepath.Join(t.TempDir(), "a")
	f.must(os.WriteFile(data, []byte("abc"), 0o644))
	for _, fd := range []string{"3", "4", "5"} {
		f.addFD("42", fd, data, "1")
	}

	p, _ := New(f.root).Process(42)
	if got := len(p.OpenFiles(2)); got != 2 {
		t.Fatalf("got %d files, want 2", got)
	}
	if got := len(p.OpenFiles(0)); got != 3 {
		t.Fatalf("got %d files, want 3", got)
	}
}

func TestProcsByBinaryName(t *testing.T) {
	f := newFakeProc(t)
	f.addProcess("10", "cp", "/usr/bin/cp")
	f.addProcess("11", "rsync", "/usr/bin/rsync")
	f.addProcess("12", "cp", "")
	f.addProcess("13", "busybox", "/bin/busybox")

	fs := New(f.root)
	procs, err := fs.ProcsByBinaryName("cp")
	if err != nil {
		t.Fatal(err)
	}
	var pids []int
	for _, p := range procs {
		pids = append(pids, p.PID)
	}
	slices.Sort(pids)
	if !slices.Equal(pids, []int{10, 12}) {
		t.Fatalf("pids = %v", pids)
	}

	if _, err := fs.ProcsByBinaryName(""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestParseFDInfoPos(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"pos:\t12345\nflags:\t02\n", 12345, false},
		{"flags:\t02\npos:   7\n", 7, false},
		{"flags:\t02\n", 0, true},
		{"pos:\tabc\n", 0, true},
	}
	for _, tt := range tests {
		got, err := parseFDInfoPos(bufio.NewScanner(strings.NewReader(tt.in)))
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLiveProcessOpenFiles(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("procfs is linux only")
	}
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("no /proc")
	}

	fs := New("")
	pids, err := fs.PIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(pids, os.Getpid()) {
		t.Fatalf("own pid %d not listed", os.Getpid())
	}

	tf, err := os.CreateTemp(t.TempDir(), "cv-live")
	if err != nil {
		t.Fatal(err)
	}
	defer tf.Close()
	if _, err := tf.WriteString("hello"); err != nil {
		t.Fatal(err)
	}
	want, err := filepath.EvalSymlinks(tf.Name())
	if err != nil {
		t.Fatal(err)
	}

	p, err := fs.Process(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	var found *OpenFile
	files := p.OpenFiles(0)
	for i := range files {
		if files[i].Path == want {
			found = &files[i]
		}
	}
	if found == nil {
		t.Fatalf("temp file %s not among open files %+v", want, files)
	}
	if found.Info.Size != 5 || found.Info.Pos != 5 {
		t.Fatalf("unexpected fd info %+v", found.Info)
	}
}
