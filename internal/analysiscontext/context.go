// Package analysiscontext builds the cross-dump view the analyzers in
// internal/analysis run over (spec §4.2): thread identity matching across a
// sequence of dumps, and the daemon/GC/VM/ignore/focus filtering pipeline.
package analysiscontext

import (
	"regexp"
	"strings"

	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/internal/jstallerr"
	"github.com/sirupsen/logrus"
)

var noiseNameRe = regexp.MustCompile(`^(GC|VM)\b|^Finalizer$|^Reference Handler$`)

// MatchedEntry is one occurrence of a logical thread within a specific dump
// of the sequence.
type MatchedEntry struct {
	DumpIndex int
	Thread    *dump.ThreadInfo
}

// AnalysisContext is the read-only view every analyzer in internal/analysis
// runs against. It is built once from an ordered dump sequence and never
// mutated afterward.
type AnalysisContext struct {
	dumps    []*dump.ThreadDump
	opts     AnalysisOptions
	warnings []string
	log      logrus.FieldLogger

	matched map[ThreadIdentifier][]MatchedEntry
}

// New builds an AnalysisContext from an ordered sequence of dumps (oldest
// first), logging through the standard logger. See NewWithLogger.
func New(dumps []*dump.ThreadDump, opts AnalysisOptions) (*AnalysisContext, error) {
	return NewWithLogger(dumps, opts, logrus.StandardLogger())
}

// NewWithLogger builds an AnalysisContext from an ordered sequence of dumps
// (oldest first). It compiles the options' regex patterns and performs the
// cross-dump identity matching and duplicate-dump detection described in
// spec §4.2/§9 up front so every analyzer sees a consistent, already-built
// view.
func NewWithLogger(dumps []*dump.ThreadDump, opts AnalysisOptions, log logrus.FieldLogger) (*AnalysisContext, error) {
	if err := opts.Compile(); err != nil {
		return nil, err
	}
	c := &AnalysisContext{
		dumps:   dumps,
		opts:    opts,
		log:     log,
		matched: map[ThreadIdentifier][]MatchedEntry{},
	}
	c.buildIdentity()
	c.detectDuplicateDumps()
	return c, nil
}

func (c *AnalysisContext) buildIdentity() {
	for i, d := range c.dumps {
		for _, t := range d.Threads {
			id := Identify(t)
			if id.IsNameFallback() {
				c.warnf(jstallerr.ThreadNameCollision, "thread %q matched by name fallback in dump %d", t.Name, i)
			}
			c.matched[id] = append(c.matched[id], MatchedEntry{DumpIndex: i, Thread: t})
		}
	}
}

// detectDuplicateDumps warns when two consecutive dumps were taken at
// distinct wall-clock times but every matched thread between them shows an
// identical elapsed time — almost always a sign the same capture was fed in
// twice (spec §7's DUPLICATE_DUMP).
func (c *AnalysisContext) detectDuplicateDumps() {
	for i := 1; i < len(c.dumps); i++ {
		prev, next := c.dumps[i-1], c.dumps[i]
		if prev.Timestamp == nil || next.Timestamp == nil || prev.Timestamp.Equal(*next.Timestamp) {
			continue
		}
		if len(prev.Threads) == 0 || len(next.Threads) == 0 {
			continue
		}
		allSame := true
		sawComparable := false
		for _, t := range next.Threads {
			match := c.MatchThread(t, prev)
			if match == nil || match.ElapsedTimeSec == nil || t.ElapsedTimeSec == nil {
				continue
			}
			sawComparable = true
			if *match.ElapsedTimeSec != *t.ElapsedTimeSec {
				allSame = false
				break
			}
		}
		if sawComparable && allSame {
			c.warnf(jstallerr.DuplicateDump, "dump %d looks identical to dump %d despite distinct timestamps", i, i-1)
		}
	}
}

func (c *AnalysisContext) warnf(kind jstallerr.Kind, format string, args ...any) {
	c.warnings = append(c.warnings, string(kind))
	if c.log != nil {
		c.log.Warnf(format, args...)
	}
}

// Warnings returns the warning kinds recorded while building the context.
func (c *AnalysisContext) Warnings() []string { return append([]string(nil), c.warnings...) }

// Options returns the options this context was built with.
func (c *AnalysisContext) Options() AnalysisOptions { return c.opts }

// IsSingleDump reports whether this context wraps exactly one dump — several
// analyzers (churn, progress) degrade to a single-dump-only view in that case.
func (c *AnalysisContext) IsSingleDump() bool { return len(c.dumps) == 1 }

// DumpCount returns the number of dumps in the sequence.
func (c *AnalysisContext) DumpCount() int { return len(c.dumps) }

// Dumps returns the full ordered dump sequence.
func (c *AnalysisContext) Dumps() []*dump.ThreadDump { return c.dumps }

// FirstDump returns the oldest dump, or nil if the context is empty.
func (c *AnalysisContext) FirstDump() *dump.ThreadDump {
	if len(c.dumps) == 0 {
		return nil
	}
	return c.dumps[0]
}

// LastDump returns the newest dump, or nil if the context is empty.
func (c *AnalysisContext) LastDump() *dump.ThreadDump {
	if len(c.dumps) == 0 {
		return nil
	}
	return c.dumps[len(c.dumps)-1]
}

// FindThreadByNativeID scopes the lookup to a single dump.
func (c *AnalysisContext) FindThreadByNativeID(d *dump.ThreadDump, nativeID string) *dump.ThreadInfo {
	return d.ThreadByNativeID(nativeID)
}

// FindThreadByName scopes the lookup to a single dump.
func (c *AnalysisContext) FindThreadByName(d *dump.ThreadDump, name string) *dump.ThreadInfo {
	return d.ThreadByName(name)
}

// MatchThread finds the same logical thread as t within targetDump, using
// the priority-based identity rule in identity.go, or nil if no thread in
// targetDump matches.
func (c *AnalysisContext) MatchThread(t *dump.ThreadInfo, targetDump *dump.ThreadDump) *dump.ThreadInfo {
	if targetDump == nil {
		return nil
	}
	want := Identify(t)
	for _, cand := range targetDump.Threads {
		if Identify(cand) == want {
			return cand
		}
	}
	return nil
}

// MatchedThreads returns every logical thread's occurrences across the dump
// sequence, ordered by containing-dump index within each identifier's slice.
func (c *AnalysisContext) MatchedThreads() map[ThreadIdentifier][]MatchedEntry {
	return c.matched
}

// FilteredThreads applies the four-stage filter pipeline from spec §4.2 to a
// single dump's threads: daemon exclusion, GC/VM-noise exclusion, ignore
// patterns, then (if set) focus patterns as a final keep-only filter. Both
// the daemon and GC/VM steps carve out threads that either match a focus
// pattern or whose CPU time is at least 20% of the dump's total CPU time, so
// a busy daemon or GC thread can't be filtered out from under an analyst
// deliberately looking for it.
func (c *AnalysisContext) FilteredThreads(d *dump.ThreadDump) []*dump.ThreadInfo {
	totalCPU := totalCPUTime(d)
	carveOutThreshold := totalCPU * 0.20

	out := make([]*dump.ThreadInfo, 0, len(d.Threads))
	for _, t := range d.Threads {
		if !c.opts.IncludeDaemon && t.Daemon && !c.carvedOut(t, carveOutThreshold) {
			continue
		}
		if isNoiseThread(t.Name) && !c.carvedOut(t, carveOutThreshold) {
			isGC := strings.HasPrefix(strings.TrimSpace(t.Name), "GC")
			if (isGC && !c.opts.IncludeGC) || (!isGC && !c.opts.IncludeVM) {
				continue
			}
		}
		if c.opts.matchesIgnore(t.Name) {
			continue
		}
		out = append(out, t)
	}
	if c.opts.hasFocus() {
		kept := out[:0:0]
		for _, t := range out {
			if c.opts.matchesFocus(t.Name) {
				kept = append(kept, t)
			}
		}
		out = kept
	}
	return out
}

func (c *AnalysisContext) carvedOut(t *dump.ThreadInfo, cpuThreshold float64) bool {
	if c.opts.matchesFocus(t.Name) {
		return true
	}
	return t.CPUTimeSec != nil && *t.CPUTimeSec >= cpuThreshold && cpuThreshold > 0
}

func isNoiseThread(name string) bool {
	return noiseNameRe.MatchString(strings.TrimSpace(name))
}

func totalCPUTime(d *dump.ThreadDump) float64 {
	var sum float64
	for _, t := range d.Threads {
		if t.CPUTimeSec != nil {
			sum += *t.CPUTimeSec
		}
	}
	return sum
}
