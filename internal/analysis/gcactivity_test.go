package analysis

import (
	"testing"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

func TestAnalyzeGCActivity_IdentifiesAndComputesShare(t *testing.T) {
	d := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "main", CPUTimeSec: cpup(1.0)},
		{Name: "G1 Young RemSet Sampling", CPUTimeSec: cpup(3.0)},
		{Name: "GC Thread#0", CPUTimeSec: cpup(1.0)},
	}}
	ctx, err := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := AnalyzeGCActivity(ctx)
	if len(result.PerDump) != 1 {
		t.Fatalf("expected 1 dump, got %d", len(result.PerDump))
	}
	a := result.PerDump[0]
	if a.GCThreadCount != 2 {
		t.Errorf("expected 2 GC threads, got %d", a.GCThreadCount)
	}
	want := 4.0 / 5.0
	if a.GCCPUPercentage != want {
		t.Errorf("expected gcCpuPercentage %v, got %v", want, a.GCCPUPercentage)
	}
}

func TestAnalyzeGCActivity_NonGCThreadsNotCounted(t *testing.T) {
	d := &dump.ThreadDump{Threads: []*dump.ThreadInfo{
		{Name: "main", CPUTimeSec: cpup(1.0)},
	}}
	ctx, _ := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	result := AnalyzeGCActivity(ctx)
	if result.PerDump[0].GCThreadCount != 0 {
		t.Errorf("expected 0 GC threads, got %d", result.PerDump[0].GCThreadCount)
	}
}
