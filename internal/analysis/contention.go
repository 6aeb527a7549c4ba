package analysis

import (
	"fmt"
	"sort"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

// LockContention is one contended lock in the last dump: its owner, its
// waiters, and a hold-duration proxy (spec §4.6).
type LockContention struct {
	LockID       string
	Owner        *dump.ThreadInfo
	Waiters      []*dump.ThreadInfo
	HoldDuration float64 // seconds, proxied by the owner's elapsed time
	LongHeld     bool
}

// ContentionResult is the Lock Contention Analyzer's output.
type ContentionResult struct {
	Locks               []LockContention
	TotalContendedLocks int
	TotalWaiters        int
	LongHeldCount       int
}

func (r *ContentionResult) IsValid() bool { return r != nil }

func (r *ContentionResult) GetSummary() string {
	return fmt.Sprintf("%d contended lock(s), %d waiter(s), %d long-held",
		r.TotalContendedLocks, r.TotalWaiters, r.LongHeldCount)
}

// AnalyzeContention finds, for each lock id appearing in the last dump, its
// owner and waiters, flagging locks held at least
// opts.LongHeldLockThresholdSeconds with at least one waiter as LONG_HELD.
func AnalyzeContention(ctx *analysiscontext.AnalysisContext) *ContentionResult {
	d := ctx.LastDump()
	result := &ContentionResult{}
	if d == nil {
		return result
	}
	threshold := ctx.Options().LongHeldLockThresholdSeconds

	owners := map[string]*dump.ThreadInfo{}
	waiters := map[string][]*dump.ThreadInfo{}
	var lockOrder []string
	seenLock := map[string]bool{}

	for _, t := range d.Threads {
		for _, l := range t.Locks {
			if l.Kind == dump.LockLocked {
				owners[l.ID] = t
				if !seenLock[l.ID] {
					seenLock[l.ID] = true
					lockOrder = append(lockOrder, l.ID)
				}
			}
		}
		if t.WaitingOnLock != nil {
			id := *t.WaitingOnLock
			waiters[id] = append(waiters[id], t)
			if !seenLock[id] {
				seenLock[id] = true
				lockOrder = append(lockOrder, id)
			}
		}
	}

	for _, id := range lockOrder {
		ws := waiters[id]
		if len(ws) == 0 {
			continue
		}
		owner := owners[id]
		hold := 0.0
		if owner != nil && owner.ElapsedTimeSec != nil {
			hold = *owner.ElapsedTimeSec
		}
		longHeld := hold >= threshold && len(ws) >= 1
		result.Locks = append(result.Locks, LockContention{
			LockID: id, Owner: owner, Waiters: ws, HoldDuration: hold, LongHeld: longHeld,
		})
		result.TotalWaiters += len(ws)
		if longHeld {
			result.LongHeldCount++
		}
	}
	sort.SliceStable(result.Locks, func(i, j int) bool {
		return len(result.Locks[i].Waiters) > len(result.Locks[j].Waiters)
	})
	result.TotalContendedLocks = len(result.Locks)
	return result
}
