// Package sampler implements the live mode: repeatedly capturing thread
// dumps from a running JVM and feeding them into a fresh analysis context
// until either a deadlock is confirmed or the overall timeout elapses
// (spec §4.10).
package sampler

import (
	"context"
	"fmt"
	"time"

	"github.com/jstall/jstall/internal/analysis"
	"github.com/jstall/jstall/internal/analysiscontext"
	"github.com/jstall/jstall/internal/dump"
	"github.com/jstall/jstall/internal/jstallerr"
	"github.com/sirupsen/logrus"
)

// CaptureFunc captures one thread dump for pid. Implementations enforce
// their own per-capture timeout and return a typed CAPTURE_* error on
// failure (spec §6's dump-capture collaborator).
type CaptureFunc func(ctx context.Context, pid int) (*dump.ThreadDump, error)

// ProcessExistsFunc probes whether pid refers to a live process.
type ProcessExistsFunc func(pid int) bool

// LiveSampler drives the capture/analyze loop. The zero value logs through
// logrus's standard logger.
type LiveSampler struct {
	Log logrus.FieldLogger
	// Options, if nil, defaults to analysiscontext.DefaultOptions().
	Options *analysiscontext.AnalysisOptions
}

// LiveResult is everything a live run produced: the captured dump sequence
// and the verdict computed over it.
type LiveResult struct {
	Dumps   []*dump.ThreadDump
	Verdict *analysis.VerdictResult
}

// Run loops, invoking capture every interval, until timeout elapses or at
// least two dumps have been captured and already yield a DEADLOCK verdict.
// A CAPTURE_* error from capture (or a missing process) is terminal and
// returned directly; a plain timeout/cancellation instead returns whatever
// verdict the dumps collected so far support, or a terminal error if none
// were captured at all.
func (s *LiveSampler) Run(ctx context.Context, pid int, interval, timeout time.Duration, capture CaptureFunc, processExists ProcessExistsFunc) (*LiveResult, error) {
	log := s.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if processExists != nil && !processExists(pid) {
		return nil, jstallerr.New(jstallerr.CaptureProcessNotFound, fmt.Sprintf("no process with pid %d", pid))
	}

	overallCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := analysiscontext.DefaultOptions()
	if s.Options != nil {
		opts = *s.Options
	}

	var dumps []*dump.ThreadDump

	d, err := capture(overallCtx, pid)
	if err != nil {
		return nil, err
	}
	dumps = append(dumps, d)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

poll:
	for {
		if len(dumps) >= 2 {
			verdict, vErr := s.computeVerdict(dumps, opts, log)
			if vErr == nil && verdict.Verdict == analysis.VerdictDeadlock {
				return &LiveResult{Dumps: dumps, Verdict: verdict}, nil
			}
		}

		select {
		case <-overallCtx.Done():
			break poll
		case <-ticker.C:
			next, err := capture(overallCtx, pid)
			if err != nil {
				return nil, err
			}
			dumps = append(dumps, next)
		}
	}

	if len(dumps) < 1 {
		return nil, jstallerr.New(jstallerr.CaptureTimeout, "no dumps captured before the overall timeout elapsed")
	}
	verdict, err := s.computeVerdict(dumps, opts, log)
	if err != nil {
		return nil, err
	}
	return &LiveResult{Dumps: dumps, Verdict: verdict}, nil
}

func (s *LiveSampler) computeVerdict(dumps []*dump.ThreadDump, opts analysiscontext.AnalysisOptions, log logrus.FieldLogger) (*analysis.VerdictResult, error) {
	ctx, err := analysiscontext.NewWithLogger(dumps, opts, log)
	if err != nil {
		return nil, err
	}
	return analysis.AnalyzeVerdict(ctx), nil
}
