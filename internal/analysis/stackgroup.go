package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

// StackGroup is a cluster of threads in the last dump sharing an identical
// stack trace, top-to-bottom (spec §4.5).
type StackGroup struct {
	Stack   []dump.StackFrame
	Threads []*dump.ThreadInfo
}

// StackGroupResult is the Stack Group Analyzer's output, sorted by
// descending group size.
type StackGroupResult struct {
	Groups []StackGroup
}

func (r *StackGroupResult) IsValid() bool { return r != nil }

func (r *StackGroupResult) GetSummary() string {
	if len(r.Groups) == 0 {
		return "no stack groups above the minimum size"
	}
	top := r.Groups[0]
	label := "<empty stack>"
	if len(top.Stack) > 0 {
		label = top.Stack[0].Class + "." + top.Stack[0].Method
	}
	return fmt.Sprintf("%d group(s); largest: %d threads at %s", len(r.Groups), len(top.Threads), label)
}

// AnalyzeStackGroups clusters the last dump's threads by stack identity and
// reports groups of at least opts.MinStackGroupSize threads.
func AnalyzeStackGroups(ctx *analysiscontext.AnalysisContext) *StackGroupResult {
	d := ctx.LastDump()
	if d == nil {
		return &StackGroupResult{}
	}
	minSize := ctx.Options().MinStackGroupSize
	if minSize <= 0 {
		minSize = 2
	}

	order := []string{}
	byKey := map[string]*StackGroup{}
	for _, t := range ctx.FilteredThreads(d) {
		key := stackKey(t.Stack)
		g, ok := byKey[key]
		if !ok {
			g = &StackGroup{Stack: t.Stack}
			byKey[key] = g
			order = append(order, key)
		}
		g.Threads = append(g.Threads, t)
	}

	var groups []StackGroup
	for _, key := range order {
		g := byKey[key]
		if len(g.Threads) >= minSize {
			groups = append(groups, *g)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Threads) > len(groups[j].Threads)
	})
	return &StackGroupResult{Groups: groups}
}

func stackKey(stack []dump.StackFrame) string {
	var b strings.Builder
	for _, f := range stack {
		b.WriteString(f.Class)
		b.WriteByte('.')
		b.WriteString(f.Method)
		b.WriteByte('(')
		if f.File != nil {
			b.WriteString(*f.File)
		}
		b.WriteByte(':')
		if f.Line != nil {
			fmt.Fprintf(&b, "%d", *f.Line)
		}
		b.WriteString(")\n")
	}
	return b.String()
}
