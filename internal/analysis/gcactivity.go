package analysis

import (
	"fmt"
	"regexp"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
)

// gcNameRe matches thread names belonging to the collector's own worker
// threads, across the major collector families (spec §4.8).
var gcNameRe = regexp.MustCompile(`^(GC|G1|Parallel GC|ConcurrentMarkSweep|ZGC|Shenandoah)`)

func isGCThread(name string) bool {
	return gcNameRe.MatchString(name)
}

// DumpGCActivity is the GC Activity Analyzer's per-dump figures.
type DumpGCActivity struct {
	Dump            *dump.ThreadDump
	GCThreadCount   int
	GCCPUSeconds    float64
	TotalCPUSeconds float64
	GCCPUPercentage float64
}

// GCActivityResult is the GC Activity Analyzer's output, usable on a single
// dump or a full sequence.
type GCActivityResult struct {
	PerDump []DumpGCActivity
}

func (r *GCActivityResult) IsValid() bool { return r != nil }

func (r *GCActivityResult) GetSummary() string {
	if len(r.PerDump) == 0 {
		return "no dumps to analyze"
	}
	last := r.PerDump[len(r.PerDump)-1]
	return fmt.Sprintf("%d GC thread(s), %.1f%% of CPU in last dump", last.GCThreadCount, last.GCCPUPercentage*100)
}

// AnalyzeGCActivity identifies GC-related threads by name pattern in every
// dump and computes the GC CPU share.
func AnalyzeGCActivity(ctx *analysiscontext.AnalysisContext) *GCActivityResult {
	result := &GCActivityResult{}
	for _, d := range ctx.Dumps() {
		activity := DumpGCActivity{Dump: d}
		for _, t := range d.Threads {
			if t.CPUTimeSec != nil {
				activity.TotalCPUSeconds += *t.CPUTimeSec
			}
			if isGCThread(t.Name) {
				activity.GCThreadCount++
				if t.CPUTimeSec != nil {
					activity.GCCPUSeconds += *t.CPUTimeSec
				}
			}
		}
		if activity.TotalCPUSeconds > 0 {
			activity.GCCPUPercentage = activity.GCCPUSeconds / activity.TotalCPUSeconds
		}
		result.PerDump = append(result.PerDump, activity)
	}
	return result
}
