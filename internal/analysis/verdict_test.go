package analysis

import (
	"testing"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

func TestAnalyzeVerdict_DeadlockIsHigh(t *testing.T) {
	d := &dump.ThreadDump{
		Threads: []*dump.ThreadInfo{
			{Name: "T-A", State: dump.Blocked},
			{Name: "T-B", State: dump.Blocked},
		},
		Deadlocks: []*dump.DeadlockInfo{
			{Threads: []dump.DeadlockedThread{
				{Name: "T-A", HeldByThread: "T-B"},
				{Name: "T-B", HeldByThread: "T-A"},
			}},
		},
	}
	ctx, err := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := AnalyzeVerdict(ctx)
	if result.Verdict != VerdictDeadlock || result.Confidence != ConfidenceHigh {
		t.Errorf("expected DEADLOCK/HIGH, got %s/%s", result.Verdict, result.Confidence)
	}
	if result.ExitCode() != 2 {
		t.Errorf("expected exit code 2, got %d", result.ExitCode())
	}
}

func TestAnalyzeVerdict_SingleStuckThreadIsMediumSuspectedStall(t *testing.T) {
	stack := []dump.StackFrame{{Class: "Worker", Method: "run"}}
	a := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "Worker", NativeID: strp("0x1"), State: dump.Runnable, CPUTimeSec: cpup(1.000), Stack: stack},
	}}
	b := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "Worker", NativeID: strp("0x1"), State: dump.Runnable, CPUTimeSec: cpup(1.001), Stack: stack},
	}}
	ctx, err := analysiscontext.New([]*dump.ThreadDump{a, b}, analysiscontext.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := AnalyzeVerdict(ctx)
	if result.Verdict != VerdictSuspectedStall || result.Confidence != ConfidenceMedium {
		t.Errorf("expected SUSPECTED_STALL/MEDIUM, got %s/%s", result.Verdict, result.Confidence)
	}
	if result.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", result.ExitCode())
	}
}

func TestAnalyzeVerdict_NoSignalsIsOK(t *testing.T) {
	stackA := []dump.StackFrame{{Class: "Worker", Method: "step1"}}
	stackB := []dump.StackFrame{{Class: "Worker", Method: "step2"}}
	a := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "Worker", NativeID: strp("0x1"), State: dump.Runnable, CPUTimeSec: cpup(1.0), Stack: stackA},
	}}
	b := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "Worker", NativeID: strp("0x1"), State: dump.Runnable, CPUTimeSec: cpup(1.5), Stack: stackB},
	}}
	ctx, _ := analysiscontext.New([]*dump.ThreadDump{a, b}, analysiscontext.DefaultOptions())
	result := AnalyzeVerdict(ctx)
	if result.Verdict != VerdictOK {
		t.Errorf("expected OK, got %s", result.Verdict)
	}
	if result.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d", result.ExitCode())
	}
}
