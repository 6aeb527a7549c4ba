package analysis

import (
	"fmt"
	"regexp"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/internal/jstallerr"
)

// ProgressClassification is the per-thread-pair outcome of the Thread
// Progress Analyzer (spec §4.4). It is defined only between two consecutive
// dumps for the same matched thread.
type ProgressClassification string

const (
	Active               ProgressClassification = "ACTIVE"
	RunnableNoProgress   ProgressClassification = "RUNNABLE_NO_PROGRESS"
	BlockedOnLock        ProgressClassification = "BLOCKED_ON_LOCK"
	WaitingExpected      ProgressClassification = "WAITING_EXPECTED"
	TimedWaitingExpected ProgressClassification = "TIMED_WAITING_EXPECTED"
	Stuck                ProgressClassification = "STUCK"
	Restarted            ProgressClassification = "RESTARTED"
	ThreadTerminated     ProgressClassification = "TERMINATED"
	Ignored              ProgressClassification = "IGNORED"
)

// backgroundNameRe recognizes the common JVM-internal background threads
// whose WAITING/TIMED_WAITING state is expected rather than a stall symptom.
var backgroundNameRe = regexp.MustCompile(
	`^(Reference Handler|Finalizer|Signal Dispatcher|Common-Cleaner|Notification Thread|DestroyJavaVM|process reaper|RMI TCP Connection|AWT-|Timer-|.*Scheduler.*|.*-scheduler.*)`)

func isBackgroundThread(name string) bool {
	return backgroundNameRe.MatchString(name)
}

// Transition is one matched thread's classification between two consecutive
// dumps in the sequence.
type Transition struct {
	FromDumpIndex  int
	ToDumpIndex    int
	Identifier     analysiscontext.ThreadIdentifier
	Thread         *dump.ThreadInfo // the thread as it appears in the later dump
	Classification ProgressClassification
}

// ProgressSummary tallies classifications across every transition.
type ProgressSummary struct {
	Total      int
	Active     int
	NoProgress int
	Blocked    int
	Stuck      int
	Ignored    int
}

// ProgressResult is the Thread Progress Analyzer's output.
type ProgressResult struct {
	Transitions []Transition
	Summary     ProgressSummary
	Degraded    bool
	Warnings    []string
}

func (r *ProgressResult) IsValid() bool { return r != nil }

func (r *ProgressResult) GetSummary() string {
	s := fmt.Sprintf("%d transitions: %d active, %d no-progress, %d blocked, %d stuck, %d ignored",
		r.Summary.Total, r.Summary.Active, r.Summary.NoProgress, r.Summary.Blocked, r.Summary.Stuck, r.Summary.Ignored)
	if r.Degraded {
		s += " (degraded: CPU time missing for some threads)"
	}
	return s
}

// AnalyzeProgress classifies every matched thread's transition across each
// consecutive dump pair in the context (spec §4.4).
func AnalyzeProgress(ctx *analysiscontext.AnalysisContext) *ProgressResult {
	result := &ProgressResult{}
	opts := ctx.Options()
	epsilon := opts.CPUEpsilonMs / 1000.0

	dumps := ctx.Dumps()
	for i := 0; i+1 < len(dumps); i++ {
		a, b := dumps[i], dumps[i+1]
		for _, t := range b.Threads {
			prev := ctx.MatchThread(t, a)
			if prev == nil {
				continue
			}
			class, degraded := classifyTransition(prev, t, epsilon)
			if degraded {
				result.Degraded = true
			}
			result.Transitions = append(result.Transitions, Transition{
				FromDumpIndex:  i,
				ToDumpIndex:    i + 1,
				Identifier:     analysiscontext.Identify(t),
				Thread:         t,
				Classification: class,
			})
			tallyClassification(&result.Summary, class)
		}
	}
	if result.Degraded {
		result.Warnings = append(result.Warnings, string(jstallerr.MissingCPUTime))
	}
	return result
}

func tallyClassification(s *ProgressSummary, c ProgressClassification) {
	s.Total++
	switch c {
	case Active:
		s.Active++
	case RunnableNoProgress:
		s.NoProgress++
	case BlockedOnLock:
		s.Blocked++
	case Stuck:
		s.Stuck++
	case Ignored:
		s.Ignored++
	}
}

func classifyTransition(prev, next *dump.ThreadInfo, epsilon float64) (ProgressClassification, bool) {
	if prev.ElapsedTimeSec != nil && next.ElapsedTimeSec != nil && *next.ElapsedTimeSec < *prev.ElapsedTimeSec {
		return Restarted, false
	}

	switch next.State {
	case dump.New:
		return Ignored, false
	case dump.Terminated:
		return ThreadTerminated, false
	case dump.Runnable:
		return classifyRunnable(prev, next, epsilon)
	case dump.Blocked:
		return classifyBlocked(prev, next), false
	case dump.Waiting:
		return classifyWaiting(prev, next, epsilon), false
	case dump.TimedWaiting:
		return classifyTimedWaiting(prev, next, epsilon), false
	default:
		return Ignored, false
	}
}

func classifyRunnable(prev, next *dump.ThreadInfo, epsilon float64) (ProgressClassification, bool) {
	delta, ok := cpuDelta(prev, next)
	if !ok {
		if stacksDiffer(prev.Stack, next.Stack) {
			return Active, true
		}
		return RunnableNoProgress, true
	}
	if delta > epsilon {
		return Active, false
	}
	if stacksDiffer(prev.Stack, next.Stack) {
		return Active, false
	}
	return RunnableNoProgress, false
}

func classifyBlocked(prev, next *dump.ThreadInfo) ProgressClassification {
	if prev.WaitingOnLock == nil || next.WaitingOnLock == nil || *prev.WaitingOnLock != *next.WaitingOnLock {
		return BlockedOnLock
	}
	return Stuck
}

func classifyWaiting(prev, next *dump.ThreadInfo, epsilon float64) ProgressClassification {
	if isBackgroundThread(next.Name) {
		return WaitingExpected
	}
	return classifyStuckOrActive(prev, next, epsilon)
}

func classifyTimedWaiting(prev, next *dump.ThreadInfo, epsilon float64) ProgressClassification {
	if isBackgroundThread(next.Name) {
		return TimedWaitingExpected
	}
	return classifyStuckOrActive(prev, next, epsilon)
}

func classifyStuckOrActive(prev, next *dump.ThreadInfo, epsilon float64) ProgressClassification {
	delta, ok := cpuDelta(prev, next)
	unchanged := !stacksDiffer(prev.Stack, next.Stack) && (!ok || delta <= epsilon)
	if unchanged {
		return Stuck
	}
	return Active
}

func cpuDelta(prev, next *dump.ThreadInfo) (float64, bool) {
	if prev.CPUTimeSec == nil || next.CPUTimeSec == nil {
		return 0, false
	}
	return *next.CPUTimeSec - *prev.CPUTimeSec, true
}

func stacksDiffer(a, b []dump.StackFrame) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return true
		}
	}
	return false
}
