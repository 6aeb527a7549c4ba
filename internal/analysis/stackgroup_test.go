package analysis

import (
	"fmt"
	"testing"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

func socketReadStack() []dump.StackFrame {
	return []dump.StackFrame{
		{Class: "java.net.SocketInputStream", Method: "read", Native: true},
		{Class: "java.io.BufferedInputStream", Method: "read"},
	}
}

func TestAnalyzeStackGroups_GroupsIdenticalStacks(t *testing.T) {
	var threads []*dump.ThreadInfo
	for i := 0; i < 15; i++ {
		threads = append(threads, &dump.ThreadInfo{
			Name:  fmt.Sprintf("worker-%d", i),
			State: dump.Runnable,
			Stack: socketReadStack(),
		})
	}
	d := &dump.ThreadDump{Threads: threads}
	ctx, err := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := AnalyzeStackGroups(ctx)
	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	if len(result.Groups[0].Threads) != 15 {
		t.Errorf("expected group of 15, got %d", len(result.Groups[0].Threads))
	}
}

func TestAnalyzeStackGroups_BelowMinSizeExcluded(t *testing.T) {
	d := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "a", Stack: socketReadStack()},
	}}
	ctx, _ := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	result := AnalyzeStackGroups(ctx)
	if len(result.Groups) != 0 {
		t.Errorf("expected no groups below min size, got %d", len(result.Groups))
	}
}

func TestAnalyzeStackGroups_SortedDescending(t *testing.T) {
	var threads []*dump.ThreadInfo
	for i := 0; i < 3; i++ {
		threads = append(threads, &dump.ThreadInfo{Name: fmt.Sprintf("a-%d", i), Stack: []dump.StackFrame{{Class: "A", Method: "m"}}})
	}
	for i := 0; i < 5; i++ {
		threads = append(threads, &dump.ThreadInfo{Name: fmt.Sprintf("b-%d", i), Stack: []dump.StackFrame{{Class: "B", Method: "m"}}})
	}
	d := &dump.ThreadDump{Threads: threads}
	ctx, _ := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	result := AnalyzeStackGroups(ctx)
	if len(result.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result.Groups))
	}
	if len(result.Groups[0].Threads) < len(result.Groups[1].Threads) {
		t.Errorf("expected groups sorted by descending size, got %+v", result.Groups)
	}
}
