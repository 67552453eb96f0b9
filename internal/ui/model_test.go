package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cv/internal/progress"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	results    [][]progress.Result
	err        error
	throughput bool
	scans      int
}

func (f *fakeSource) Scan(ctx context.Context) ([]progress.Result, error) {
	f.scans++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return []progress.Result{}, nil
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res, nil
}

func (f *fakeSource) Commands() []string { return []string{"cp", "mv"} }

func (f *fakeSource) Throughput() bool { return f.throughput }

func newTestModel(t *testing.T, src progress.Source, continuous bool) *model {
	t.Helper()
	m := InitialModel(Options{Source: src, Continuous: continuous, Interval: time.Second})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return &m
}

// runScan executes the model's pending scan command and feeds its result back.
func runScan(t *testing.T, m *model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a scan command")
	}
	msg, ok := cmd().(scanFinishedMsg)
	if !ok {
		t.Fatal("command did not produce a scan result")
	}
	_, next := m.Update(msg)
	return next
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestMonitorShowsResults(t *testing.T) {
	src := &fakeSource{results: [][]progress.Result{{
		{PID: 42, Name: "cp", Active: true, Path: "/data/big.iso", Size: 1000, Pos: 250},
		{PID: 43, Name: "mv", Active: false},
	}}}
	m := newTestModel(t, src, false)

	next := runScan(t, m, m.Init())
	if next == nil || m.currentState == stateDone {
		t.Fatal("expected the next tick to be scheduled")
	}
	if m.currentState != stateShowing {
		t.Fatalf("state = %v, want showing", m.currentState)
	}
	view := m.View()
	for _, want := range []string{"cp", "/data/big.iso", "25.0%", "inactive/flushing/streaming/..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorQuitsWhenNothingRuns(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, false)

	if next := runScan(t, m, m.Init()); !isQuit(next) {
		t.Fatal("expected quit")
	}
	if got, want := ExitMessage(m), "No command currently running: cp, mv. exiting"; got != want {
		t.Fatalf("exit message = %q, want %q", got, want)
	}
}

func TestMonitorContinuousWaits(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, true)

	next := runScan(t, m, m.Init())
	if next == nil || m.currentState == stateDone {
		t.Fatal("continuous monitor must keep going")
	}
	if m.currentState != stateIdle {
		t.Fatalf("state = %v, want idle", m.currentState)
	}
	if !strings.Contains(m.View(), "waiting") {
		t.Fatalf("view = %q", m.View())
	}
	if ExitMessage(m) != "" {
		t.Fatal("unexpected exit message")
	}
}

func TestMonitorNoCommands(t *testing.T) {
	m := newTestModel(t, &fakeSource{err: progress.ErrNoCommands}, true)
	if next := runScan(t, m, m.Init()); !isQuit(next) {
		t.Fatal("expected quit")
	}
	if ExitMessage(m) != progress.ErrNoCommands.Error() {
		t.Fatalf("exit message = %q", ExitMessage(m))
	}
}

func TestMonitorScanErrorKeepsRunning(t *testing.T) {
	m := newTestModel(t, &fakeSource{err: errors.New("permission denied")}, false)
	next := runScan(t, m, m.Init())
	if next == nil || m.currentState == stateDone {
		t.Fatal("scan errors should be retried")
	}
	if !strings.Contains(m.View(), "permission denied") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestMonitorStaleTickIgnored(t *testing.T) {
	src := &fakeSource{results: [][]progress.Result{{{PID: 1, Name: "cp", Active: true, Size: 10, Pos: 1}}}}
	m := newTestModel(t, src, false)
	runScan(t, m, m.Init())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("refresh should start a scan")
	}
	if _, stale := m.Update(tickMsg{seq: 0}); stale != nil {
		t.Fatal("tick from before the refresh must be dropped")
	}
	runScan(t, m, cmd)
	if src.scans != 2 {
		t.Fatalf("scans = %d, want 2", src.scans)
	}
}

func TestMonitorQuitKey(t *testing.T) {
	m := newTestModel(t, &fakeSource{}, true)
	m.Init()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !isQuit(cmd) {
		t.Fatal("q should quit")
	}
	if m.ctx.Err() == nil {
		t.Fatal("quitting should cancel the scan context")
	}
	if m.View() != "" {
		t.Fatal("view should be empty after quit")
	}
}

func TestRenderBar(t *testing.T) {
	bar := renderBar(50, 10)
	if got := strings.Count(bar, "█"); got != 5 {
		t.Fatalf("filled = %d, want 5", got)
	}
	if got := strings.Count(renderBar(150, 10), "█"); got != 10 {
		t.Fatalf("overfull bar filled = %d", got)
	}
}
