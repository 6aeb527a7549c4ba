package analysiscontext

import "regexp"

// AnalysisOptions tunes the filtering pipeline and the thresholds shared by
// the analyzers in internal/analysis (spec §4.2/§6). The zero value is not
// valid: use DefaultOptions to get the documented defaults, then override
// individual fields.
type AnalysisOptions struct {
	IncludeDaemon bool
	IncludeGC     bool
	IncludeVM     bool

	IgnorePatterns []string
	FocusPatterns  []string

	CPUEpsilonMs                 float64
	MinStackGroupSize            int
	LongHeldLockThresholdSeconds float64
	StallThresholdPercent        float64

	ignoreRe []*regexp.Regexp
	focusRe  []*regexp.Regexp
}

// DefaultOptions returns the documented defaults: daemon and GC/VM threads
// excluded from analysis by default, a 2ms CPU-time epsilon, a minimum
// stack-group size of 2, a 20s long-held-lock threshold and a 90% stall
// threshold.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		IncludeDaemon:                false,
		IncludeGC:                    false,
		IncludeVM:                    false,
		CPUEpsilonMs:                 2,
		MinStackGroupSize:            2,
		LongHeldLockThresholdSeconds: 20,
		StallThresholdPercent:        90,
	}
}

// Compile validates and pre-compiles the ignore/focus regex lists. It must
// be called once before the options are used by New; a malformed pattern is
// reported as INVALID_OPTIONS rather than panicking deep inside the filter
// pipeline.
func (o *AnalysisOptions) Compile() error {
	ignoreRe, err := compilePatterns(o.IgnorePatterns)
	if err != nil {
		return errInvalidOptions("ignore pattern: " + err.Error())
	}
	focusRe, err := compilePatterns(o.FocusPatterns)
	if err != nil {
		return errInvalidOptions("focus pattern: " + err.Error())
	}
	o.ignoreRe = ignoreRe
	o.focusRe = focusRe
	return nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func (o *AnalysisOptions) matchesIgnore(name string) bool {
	for _, re := range o.ignoreRe {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (o *AnalysisOptions) matchesFocus(name string) bool {
	for _, re := range o.focusRe {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

func (o *AnalysisOptions) hasFocus() bool {
	return len(o.focusRe) > 0
}
