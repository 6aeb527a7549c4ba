package analysis

import (
	"fmt"
	"sort"
	"time"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/utils"
)

// Verdict is the top-level conclusion ∈ {OK, SUSPECTED_STALL, DEADLOCK, ERROR}.
type Verdict string

const (
	VerdictOK             Verdict = "OK"
	VerdictSuspectedStall Verdict = "SUSPECTED_STALL"
	VerdictDeadlock       Verdict = "DEADLOCK"
	VerdictError          Verdict = "ERROR"
)

// Confidence qualifies a non-terminal verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// VerdictResult is the Stall Verdict's output (spec §4.9), along with the
// exit code the live-mode collaborator should surface (0=OK, 1=SUSPECTED_STALL,
// 2=DEADLOCK, 3=ERROR).
type VerdictResult struct {
	Verdict    Verdict
	Confidence Confidence
	Reasons    []string
}

func (r *VerdictResult) IsValid() bool { return r != nil }

func (r *VerdictResult) GetSummary() string {
	return fmt.Sprintf("%s (%s)", r.Verdict, r.Confidence)
}

// ExitCode maps the verdict to the documented process exit code.
func (r *VerdictResult) ExitCode() int {
	switch r.Verdict {
	case VerdictOK:
		return 0
	case VerdictSuspectedStall:
		return 1
	case VerdictDeadlock:
		return 2
	default:
		return 3
	}
}

// AnalyzeVerdict runs every analyzer over ctx and aggregates their outputs
// into the final stall verdict, evaluated top-down.
func AnalyzeVerdict(ctx *analysiscontext.AnalysisContext) *VerdictResult {
	deadlocks := AnalyzeDeadlocks(ctx)
	progress := AnalyzeProgress(ctx)
	stackGroups := AnalyzeStackGroups(ctx)
	contention := AnalyzeContention(ctx)
	churn := AnalyzeChurn(ctx)

	if len(deadlocks.Deadlocks) > 0 {
		return &VerdictResult{
			Verdict:    VerdictDeadlock,
			Confidence: ConfidenceHigh,
			Reasons:    deadlockReasons(deadlocks),
		}
	}

	lastPair := lastPairTransitions(ctx, progress)
	nonIgnored, stalled, allRunnableNoProgress := summarizeLastPair(lastPair)

	// Rule 2 requires at least two non-ignored matched threads: a single
	// thread can't establish a systemic, HIGH-confidence stall by itself —
	// that narrower case is rule 3's MEDIUM-confidence territory below.
	threshold := ctx.Options().StallThresholdPercent
	if ctx.DumpCount() >= 2 && nonIgnored >= 2 && 100*float64(stalled)/float64(nonIgnored) >= threshold {
		return &VerdictResult{
			Verdict:    VerdictSuspectedStall,
			Confidence: ConfidenceHigh,
			Reasons:    stallReasons(stackGroups, contention, churn, progress),
		}
	}

	if ctx.DumpCount() >= 2 && allRunnableNoProgress {
		return &VerdictResult{
			Verdict:    VerdictSuspectedStall,
			Confidence: ConfidenceMedium,
			Reasons:    stallReasons(stackGroups, contention, churn, progress),
		}
	}

	return &VerdictResult{Verdict: VerdictOK, Confidence: ConfidenceHigh, Reasons: []string{"no stall signals observed"}}
}

func lastPairTransitions(ctx *analysiscontext.AnalysisContext, progress *ProgressResult) []Transition {
	if ctx.DumpCount() < 2 {
		return nil
	}
	lastTo := ctx.DumpCount() - 1
	var out []Transition
	for _, tr := range progress.Transitions {
		if tr.ToDumpIndex == lastTo {
			out = append(out, tr)
		}
	}
	return out
}

func summarizeLastPair(transitions []Transition) (nonIgnored, stalled int, allRunnableNoProgress bool) {
	allRunnableNoProgress = true
	sawRunnable := false
	for _, tr := range transitions {
		if tr.Classification == Ignored {
			continue
		}
		nonIgnored++
		switch tr.Classification {
		case RunnableNoProgress, BlockedOnLock, Stuck:
			stalled++
		}
		if tr.Thread.State == dump.Runnable {
			sawRunnable = true
			if tr.Classification != RunnableNoProgress {
				allRunnableNoProgress = false
			}
		}
	}
	if !sawRunnable {
		allRunnableNoProgress = false
	}
	return nonIgnored, stalled, allRunnableNoProgress
}

func deadlockReasons(r *DeadlockResult) []string {
	var reasons []string
	for _, dl := range r.Deadlocks {
		var names []string
		for _, t := range dl.Threads {
			names = append(names, t.Name)
		}
		reasons = append(reasons, fmt.Sprintf("deadlock among threads: %v", names))
	}
	return reasons
}

func stallReasons(sg *StackGroupResult, c *ContentionResult, churn *ChurnResult, progress *ProgressResult) []string {
	var reasons []string

	if len(sg.Groups) > 0 {
		top := sg.Groups[0]
		label := "<empty stack>"
		if len(top.Stack) > 0 {
			label = top.Stack[0].Class + "." + top.Stack[0].Method
		}
		reasons = append(reasons, fmt.Sprintf("largest stack group: %d threads at %s", len(top.Threads), label))
	}

	longest := longestHeldLock(c)
	if longest != nil {
		reasons = append(reasons, fmt.Sprintf("lock %s held %s with %d waiter(s)",
			longest.LockID, utils.FormatDuration(time.Duration(longest.HoldDuration*float64(time.Second))), len(longest.Waiters)))
	}

	reasons = append(reasons, fmt.Sprintf("progress: %d active, %d no-progress, %d blocked, %d stuck",
		progress.Summary.Active, progress.Summary.NoProgress, progress.Summary.Blocked, progress.Summary.Stuck))

	if churn.IsValid() {
		reasons = append(reasons, fmt.Sprintf("thread count change: %+d (%d -> %d)", churn.NetGrowth, churn.FirstCount, churn.LastCount))
	}

	return reasons
}

func longestHeldLock(c *ContentionResult) *LockContention {
	if len(c.Locks) == 0 {
		return nil
	}
	locks := append([]LockContention(nil), c.Locks...)
	sort.SliceStable(locks, func(i, j int) bool { return locks[i].HoldDuration > locks[j].HoldDuration })
	return &locks[0]
}
