package analysiscontext

import (
	"testing"
	"time"

	"github.com/jstall/jstall/internal/dump"
)

func threadsDump(threads ...*dump.ThreadInfo) *dump.ThreadDump {
	return &dump.ThreadDump{Threads: threads}
}

func TestNew_InvalidOptionsRejected(t *testing.T) {
	opts := DefaultOptions()
	opts.IgnorePatterns = []string{"("}
	if _, err := New([]*dump.ThreadDump{threadsDump()}, opts); err == nil {
		t.Fatal("expected invalid regex to produce an error")
	}
}

func TestMatchThread_FindsAcrossDumps(t *testing.T) {
	a := threadsDump(&dump.ThreadInfo{Name: "main", NativeID: ptr("0x1")})
	b := threadsDump(&dump.ThreadInfo{Name: "main", NativeID: ptr("0x1")})

	ctx, err := New([]*dump.ThreadDump{a, b}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := ctx.MatchThread(a.Threads[0], b)
	if found == nil || found != b.Threads[0] {
		t.Errorf("expected to find matching thread in second dump")
	}
}

func TestMatchThread_NoMatchReturnsNil(t *testing.T) {
	a := threadsDump(&dump.ThreadInfo{Name: "main", NativeID: ptr("0x1")})
	b := threadsDump(&dump.ThreadInfo{Name: "other", NativeID: ptr("0x2")})

	ctx, _ := New([]*dump.ThreadDump{a, b}, DefaultOptions())
	if ctx.MatchThread(a.Threads[0], b) != nil {
		t.Errorf("expected no match")
	}
}

func TestFilteredThreads_DaemonExcludedByDefault(t *testing.T) {
	d := threadsDump(
		&dump.ThreadInfo{Name: "main", CPUTimeSec: ptr(1.0)},
		&dump.ThreadInfo{Name: "daemon-worker", Daemon: true, CPUTimeSec: ptr(0.01)},
	)
	ctx, _ := New([]*dump.ThreadDump{d}, DefaultOptions())
	filtered := ctx.FilteredThreads(d)
	if len(filtered) != 1 || filtered[0].Name != "main" {
		t.Errorf("expected daemon thread excluded, got %+v", filtered)
	}
}

func TestFilteredThreads_DaemonCarvedOutByHighCPUShare(t *testing.T) {
	d := threadsDump(
		&dump.ThreadInfo{Name: "main", CPUTimeSec: ptr(1.0)},
		&dump.ThreadInfo{Name: "busy-daemon", Daemon: true, CPUTimeSec: ptr(5.0)},
	)
	ctx, _ := New([]*dump.ThreadDump{d}, DefaultOptions())
	filtered := ctx.FilteredThreads(d)
	names := map[string]bool{}
	for _, t := range filtered {
		names[t.Name] = true
	}
	if !names["busy-daemon"] {
		t.Errorf("expected high-CPU-share daemon to be carved out of exclusion, got %+v", filtered)
	}
}

func TestFilteredThreads_GCNoiseExcludedByDefault(t *testing.T) {
	d := threadsDump(
		&dump.ThreadInfo{Name: "main"},
		&dump.ThreadInfo{Name: "GC Thread#0"},
		&dump.ThreadInfo{Name: "Reference Handler"},
	)
	ctx, _ := New([]*dump.ThreadDump{d}, DefaultOptions())
	filtered := ctx.FilteredThreads(d)
	if len(filtered) != 1 || filtered[0].Name != "main" {
		t.Errorf("expected GC/VM noise threads excluded, got %+v", filtered)
	}
}

func TestFilteredThreads_IgnorePattern(t *testing.T) {
	d := threadsDump(
		&dump.ThreadInfo{Name: "main"},
		&dump.ThreadInfo{Name: "pool-1-thread-1"},
	)
	opts := DefaultOptions()
	opts.IgnorePatterns = []string{`^pool-`}
	ctx, err := New([]*dump.ThreadDump{d}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filtered := ctx.FilteredThreads(d)
	if len(filtered) != 1 || filtered[0].Name != "main" {
		t.Errorf("expected ignore pattern to drop matching thread, got %+v", filtered)
	}
}

func TestFilteredThreads_FocusPatternKeepsOnlyMatches(t *testing.T) {
	d := threadsDump(
		&dump.ThreadInfo{Name: "main"},
		&dump.ThreadInfo{Name: "worker-1"},
		&dump.ThreadInfo{Name: "worker-2"},
	)
	opts := DefaultOptions()
	opts.FocusPatterns = []string{`^worker-`}
	ctx, err := New([]*dump.ThreadDump{d}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filtered := ctx.FilteredThreads(d)
	if len(filtered) != 2 {
		t.Fatalf("expected only focus-matching threads kept, got %+v", filtered)
	}
	for _, th := range filtered {
		if th.Name == "main" {
			t.Errorf("expected main excluded by focus pattern")
		}
	}
}

func TestDetectDuplicateDumps_WarnsOnIdenticalElapsed(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(5 * time.Second)
	a := &dump.ThreadDump{Timestamp: &t1, Threads: []*dump.ThreadInfo{
		{Name: "main", NativeID: ptr("0x1"), ElapsedTimeSec: ptr(10.0)},
	}}
	b := &dump.ThreadDump{Timestamp: &t2, Threads: []*dump.ThreadInfo{
		{Name: "main", NativeID: ptr("0x1"), ElapsedTimeSec: ptr(10.0)},
	}}
	ctx, err := New([]*dump.ThreadDump{a, b}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range ctx.Warnings() {
		if w == "DUPLICATE_DUMP" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DUPLICATE_DUMP warning, got %+v", ctx.Warnings())
	}
}

func TestIsSingleDumpAndBounds(t *testing.T) {
	d := threadsDump(&dump.ThreadInfo{Name: "main"})
	ctx, _ := New([]*dump.ThreadDump{d}, DefaultOptions())
	if !ctx.IsSingleDump() {
		t.Errorf("expected single dump context")
	}
	if ctx.FirstDump() != d || ctx.LastDump() != d {
		t.Errorf("expected first/last dump to be the only dump")
	}
	if ctx.DumpCount() != 1 {
		t.Errorf("expected dump count 1, got %d", ctx.DumpCount())
	}
}
