package livetui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jstall/jstall/internal/analysis"
	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

func TestModel_CaptureResultUpdatesVerdict(t *testing.T) {
	capture := func(ctx context.Context, pid int) (*dump.ThreadDump, error) {
		return &dump.ThreadDump{Threads: []*dump.ThreadInfo{{Name: "main", State: dump.Runnable}}}, nil
	}
	m := NewModel(123, time.Second, capture, analysiscontext.DefaultOptions())

	d := &dump.ThreadDump{Threads: []*dump.ThreadInfo{{Name: "main", State: dump.Runnable}}}
	updated, cmd := m.Update(captureResultMsg{d: d})
	next := updated.(*Model)

	if len(next.dumps) != 1 {
		t.Fatalf("expected 1 dump recorded, got %d", len(next.dumps))
	}
	if next.verdict == nil {
		t.Fatal("expected a verdict after first capture")
	}
	if cmd == nil {
		t.Fatal("expected a scheduled tick command")
	}
}

func TestModel_DeadlockStopsLoop(t *testing.T) {
	m := NewModel(1, time.Millisecond, nil, analysiscontext.DefaultOptions())
	m.dumps = []*dump.ThreadDump{{Threads: []*dump.ThreadInfo{{Name: "a", State: dump.Blocked}}}}

	d := &dump.ThreadDump{
		Threads: []*dump.ThreadInfo{{Name: "T-A", State: dump.Blocked}, {Name: "T-B", State: dump.Blocked}},
		Deadlocks: []*dump.DeadlockInfo{{Threads: []dump.DeadlockedThread{
			{Name: "T-A", HeldByThread: "T-B"},
			{Name: "T-B", HeldByThread: "T-A"},
		}}},
	}
	updated, cmd := m.Update(captureResultMsg{d: d})
	next := updated.(*Model)

	if next.verdict.Verdict != analysis.VerdictDeadlock {
		t.Errorf("expected DEADLOCK verdict, got %v", next.verdict.Verdict)
	}
	if !next.quitting {
		t.Error("expected model to be marked quitting on deadlock")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
}

func TestModel_CaptureErrorQuits(t *testing.T) {
	m := NewModel(1, time.Millisecond, nil, analysiscontext.DefaultOptions())
	updated, cmd := m.Update(captureResultMsg{err: context.DeadlineExceeded})
	next := updated.(*Model)
	if next.err == nil {
		t.Error("expected error to be recorded")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
}

func TestModel_WindowSizeUpdatesDimensions(t *testing.T) {
	m := NewModel(1, time.Second, nil, analysiscontext.DefaultOptions())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	next := updated.(*Model)
	if next.width != 100 || next.height != 40 {
		t.Errorf("expected dimensions to update, got %dx%d", next.width, next.height)
	}
}
