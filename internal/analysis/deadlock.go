package analysis

import (
	"fmt"
	"sort"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

// DetectedDeadlock is one maximal thread/lock cycle (or one JVM-confirmed
// deadlock block) found in a single dump.
type DetectedDeadlock struct {
	Dump      *dump.ThreadDump
	Threads   []*dump.ThreadInfo
	Confirmed bool // true when sourced from the parser's DeadlockInfo
}

// DeadlockResult is the Deadlock Analyzer's output (spec §4.3).
type DeadlockResult struct {
	Deadlocks []DetectedDeadlock
	Severity  string // CRITICAL or OK
}

func (r *DeadlockResult) IsValid() bool { return r != nil }

func (r *DeadlockResult) GetSummary() string {
	if len(r.Deadlocks) == 0 {
		return "OK: no deadlocks detected"
	}
	threads := 0
	for _, dl := range r.Deadlocks {
		threads += len(dl.Threads)
	}
	return fmt.Sprintf("CRITICAL: %d deadlock(s) found across %d thread(s)", len(r.Deadlocks), threads)
}

// AnalyzeDeadlocks builds the lock dependency graph for every dump in the
// context and detects cycles, additionally surfacing every JVM-confirmed
// DeadlockInfo the parser produced. Severity is CRITICAL if anything was
// found, OK otherwise.
func AnalyzeDeadlocks(ctx *analysiscontext.AnalysisContext) *DeadlockResult {
	result := &DeadlockResult{Severity: "OK"}

	for _, d := range ctx.Dumps() {
		for _, dl := range d.Deadlocks {
			var threads []*dump.ThreadInfo
			for _, dt := range dl.Threads {
				if t := d.ThreadByName(dt.Name); t != nil {
					threads = append(threads, t)
				}
			}
			result.Deadlocks = append(result.Deadlocks, DetectedDeadlock{
				Dump: d, Threads: threads, Confirmed: true,
			})
		}
		result.Deadlocks = append(result.Deadlocks, inferDeadlocksFromGraph(d)...)
	}

	if len(result.Deadlocks) > 0 {
		result.Severity = "CRITICAL"
	}
	return result
}

const (
	threadNodePrefix = "T:"
	lockNodePrefix   = "L:"
)

// inferDeadlocksFromGraph builds the bipartite thread/lock dependency graph
// for a single dump and finds cycles with an iterative depth-first search —
// an explicit frame stack rather than recursive calls, per the "avoid
// recursion depth hazards on large dumps" design note.
func inferDeadlocksFromGraph(d *dump.ThreadDump) []DetectedDeadlock {
	adj := map[string][]string{}
	threadByNode := map[string]*dump.ThreadInfo{}

	for _, t := range d.Threads {
		node := threadNodePrefix + t.Name
		threadByNode[node] = t
		if t.WaitingOnLock != nil {
			adj[node] = append(adj[node], lockNodePrefix+*t.WaitingOnLock)
		}
		for _, l := range t.Locks {
			if l.Kind == dump.LockLocked {
				lockNode := lockNodePrefix + l.ID
				adj[lockNode] = append(adj[lockNode], node)
			}
		}
	}

	var nodes []string
	for n := range adj {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	onStack := map[string]bool{}
	seenCycle := map[string]bool{}
	var out []DetectedDeadlock

	type frame struct {
		node string
		idx  int
	}

	for _, start := range nodes {
		if color[start] != white {
			continue
		}
		var stack []frame
		var path []string

		color[start] = gray
		onStack[start] = true
		stack = append(stack, frame{node: start})
		path = append(path, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.idx >= len(adj[top.node]) {
				color[top.node] = black
				onStack[top.node] = false
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			next := adj[top.node][top.idx]
			top.idx++

			if onStack[next] {
				if cycleStart := indexOfNode(path, next); cycleStart >= 0 {
					cyc := append([]string(nil), path[cycleStart:]...)
					if dl := buildDeadlockFromCycle(d, cyc, threadByNode); dl != nil {
						key := cycleKey(cyc)
						if !seenCycle[key] {
							seenCycle[key] = true
							out = append(out, *dl)
						}
					}
				}
				continue
			}
			if color[next] == white {
				color[next] = gray
				onStack[next] = true
				stack = append(stack, frame{node: next})
				path = append(path, next)
			}
		}
	}
	return out
}

func indexOfNode(path []string, node string) int {
	for i, n := range path {
		if n == node {
			return i
		}
	}
	return -1
}

func cycleKey(cyc []string) string {
	sorted := append([]string(nil), cyc...)
	sort.Strings(sorted)
	key := ""
	for _, s := range sorted {
		key += s + "|"
	}
	return key
}

func buildDeadlockFromCycle(d *dump.ThreadDump, cyc []string, threadByNode map[string]*dump.ThreadInfo) *DetectedDeadlock {
	var threads []*dump.ThreadInfo
	for _, node := range cyc {
		if t, ok := threadByNode[node]; ok {
			threads = append(threads, t)
		}
	}
	if len(threads) < 2 {
		return nil
	}
	return &DetectedDeadlock{Dump: d, Threads: threads, Confirmed: false}
}
