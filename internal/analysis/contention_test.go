package analysis

import (
	"testing"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

func TestAnalyzeContention_LongHeldLockWithWaiters(t *testing.T) {
	lockID := "0xabc"
	owner := &dump.ThreadInfo{
		Name:           "Owner",
		ElapsedTimeSec: elapsedp(30),
		Locks:          []dump.LockInfo{{ID: lockID, Kind: dump.LockLocked}},
	}
	var threads []*dump.ThreadInfo
	threads = append(threads, owner)
	for i := 0; i < 3; i++ {
		id := lockID
		threads = append(threads, &dump.ThreadInfo{Name: fmtName(i), WaitingOnLock: &id})
	}
	d := &dump.ThreadDump{Threads: threads}
	ctx, err := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := AnalyzeContention(ctx)
	if len(result.Locks) != 1 {
		t.Fatalf("expected 1 contended lock, got %d", len(result.Locks))
	}
	lc := result.Locks[0]
	if !lc.LongHeld {
		t.Errorf("expected LONG_HELD, got %+v", lc)
	}
	if len(lc.Waiters) != 3 {
		t.Errorf("expected waiterCount=3, got %d", len(lc.Waiters))
	}
	if result.TotalWaiters != 3 || result.LongHeldCount != 1 {
		t.Errorf("unexpected summary: %+v", result)
	}
}

func TestAnalyzeContention_NoWaitersExcluded(t *testing.T) {
	owner := &dump.ThreadInfo{Name: "Owner", Locks: []dump.LockInfo{{ID: "0x1", Kind: dump.LockLocked}}}
	d := &dump.ThreadDump{Threads: []*dump.ThreadInfo{owner}}
	ctx, _ := analysiscontext.New([]*dump.ThreadDump{d}, analysiscontext.DefaultOptions())
	result := AnalyzeContention(ctx)
	if len(result.Locks) != 0 {
		t.Errorf("expected no contention without waiters, got %+v", result.Locks)
	}
}

func fmtName(i int) string {
	return "waiter-" + string(rune('A'+i))
}
