package analysis

import (
	"fmt"

	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/utils"
)

// ChurnStep is one consecutive dump pair's created/destroyed/net-change
// figures (spec §4.7).
type ChurnStep struct {
	FromDumpIndex int
	ToDumpIndex   int
	Created       []*dump.ThreadInfo
	Destroyed     []*dump.ThreadInfo
	NetChange     int
}

// ChurnResult is the Thread Churn Analyzer's output. Requires at least 2
// dumps; an empty result (zero value) is returned otherwise.
type ChurnResult struct {
	Steps          []ChurnStep
	TotalCreated   int
	TotalDestroyed int
	FirstCount     int
	LastCount      int
	NetGrowth      int
	PotentialLeak  bool
	HighChurn      bool
	TrendSlope     float64
	TrendCorr      float64
}

func (r *ChurnResult) IsValid() bool { return r != nil && len(r.Steps) > 0 }

func (r *ChurnResult) GetSummary() string {
	if !r.IsValid() {
		return "churn analysis requires at least 2 dumps"
	}
	s := fmt.Sprintf("net growth %d (%d -> %d), %d created, %d destroyed",
		r.NetGrowth, r.FirstCount, r.LastCount, r.TotalCreated, r.TotalDestroyed)
	if r.PotentialLeak {
		s += "; potential leak"
	}
	if r.HighChurn {
		s += "; high churn"
	}
	return s
}

// AnalyzeChurn computes created/destroyed/net-change across every
// consecutive dump pair, and the potentialLeak/highChurn heuristics.
func AnalyzeChurn(ctx *analysiscontext.AnalysisContext) *ChurnResult {
	dumps := ctx.Dumps()
	if len(dumps) < 2 {
		return &ChurnResult{}
	}

	result := &ChurnResult{
		FirstCount: len(dumps[0].Threads),
		LastCount:  len(dumps[len(dumps)-1].Threads),
	}
	result.NetGrowth = result.LastCount - result.FirstCount

	counts := make([]float64, len(dumps))
	nonDecreasing := true

	for i, d := range dumps {
		counts[i] = float64(len(d.Threads))
		if i > 0 && counts[i] < counts[i-1] {
			nonDecreasing = false
		}
	}

	for i := 0; i+1 < len(dumps); i++ {
		a, b := dumps[i], dumps[i+1]
		aIDs := map[analysiscontext.ThreadIdentifier]*dump.ThreadInfo{}
		for _, t := range a.Threads {
			aIDs[analysiscontext.Identify(t)] = t
		}
		bIDs := map[analysiscontext.ThreadIdentifier]*dump.ThreadInfo{}
		for _, t := range b.Threads {
			bIDs[analysiscontext.Identify(t)] = t
		}

		step := ChurnStep{FromDumpIndex: i, ToDumpIndex: i + 1}
		for _, t := range b.Threads {
			if _, ok := aIDs[analysiscontext.Identify(t)]; !ok {
				step.Created = append(step.Created, t)
			}
		}
		for _, t := range a.Threads {
			if _, ok := bIDs[analysiscontext.Identify(t)]; !ok {
				step.Destroyed = append(step.Destroyed, t)
			}
		}
		step.NetChange = len(step.Created) - len(step.Destroyed)

		result.Steps = append(result.Steps, step)
		result.TotalCreated += len(step.Created)
		result.TotalDestroyed += len(step.Destroyed)
	}

	result.PotentialLeak = result.NetGrowth > 0 && nonDecreasing

	mean := utils.CalculateMean(counts)
	result.HighChurn = float64(result.TotalCreated+result.TotalDestroyed) > 2*mean

	dumpIndices := make([]float64, len(dumps))
	for i := range dumps {
		dumpIndices[i] = float64(i)
	}
	result.TrendSlope, result.TrendCorr = utils.LinearRegression(dumpIndices, counts)

	return result
}
