package ssh

import (
	"context"
	"errors"
	"testing"
	"time"

	"cv/internal/config"
	"cv/internal/progress"
)

type fakeRunner struct {
	out      []string
	err      error
	commands []string
}

func (f *fakeRunner) Run(ctx context.Context, host config.SSHHost, command string) ([]byte, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return nil, f.err
	}
	out := f.out[0]
	f.out = f.out[1:]
	return []byte(out), nil
}

func TestRemoteScannerCommand(t *testing.T) {
	r := NewRemoteScanner(nil, config.SSHHost{Name: "nas", Binary: "/opt/cv/bin/cv"}, progress.Options{
		Commands:   []string{"rsync", "my tool"},
		Throughput: true,
		Wait:       2 * time.Second,
	})
	want := "/opt/cv/bin/cv --format json --quiet --command rsync --command 'my tool' --wait-delay 2"
	if got := r.Command(); got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}
	if r.Host() != "nas" {
		t.Fatalf("host = %q", r.Host())
	}
}

func TestRemoteScannerDecodesAndSmooths(t *testing.T) {
	runner := &fakeRunner{out: []string{
		`[{"pid":12,"name":"rsync","active":true,"fd":4,"path":"/data/a","size":100,"pos":10,"throughput":100,"has_throughput":true}]`,
		`[{"pid":12,"name":"rsync","active":true,"fd":4,"path":"/data/a","size":100,"pos":40,"throughput":300,"has_throughput":true}]`,
		`null`,
	}}
	r := NewRemoteScanner(runner, config.SSHHost{Name: "nas"}, progress.Options{Commands: []string{"rsync"}, SampleSize: 3, Throughput: true})

	first, err := r.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 || first[0].Throughput != 100 || first[0].Path != "/data/a" {
		t.Fatalf("first = %+v", first)
	}
	second, err := r.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Throughput != 200 {
		t.Fatalf("smoothed throughput = %v, want 200", second[0].Throughput)
	}
	empty, err := r.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty = %#v", empty)
	}
	if len(runner.commands) != 3 {
		t.Fatalf("commands = %v", runner.commands)
	}
}

func TestRemoteScannerErrors(t *testing.T) {
	boom := errors.New("boom")
	r := NewRemoteScanner(&fakeRunner{err: boom}, config.SSHHost{Name: "nas"}, progress.Options{Commands: []string{"cp"}})
	if _, err := r.Scan(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	r = NewRemoteScanner(&fakeRunner{out: []string{"not json"}}, config.SSHHost{Name: "nas"}, progress.Options{Commands: []string{"cp"}})
	if _, err := r.Scan(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}

	r = NewRemoteScanner(nil, config.SSHHost{Name: "nas"}, progress.Options{})
	if _, err := r.Scan(context.Background()); !errors.Is(err, progress.ErrNoCommands) {
		t.Fatalf("err = %v", err)
	}
}
