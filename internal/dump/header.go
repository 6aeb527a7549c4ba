package dump

import (
	"regexp"
	"strconv"
)

var (
	headerNameRe = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"(.*)$`)
	javaIDRe     = regexp.MustCompile(`#(\d+)`)
	daemonRe     = regexp.MustCompile(`\bdaemon\b`)
	prioRe       = regexp.MustCompile(`\bprio=(\d+)`)
	tidRe        = regexp.MustCompile(`\btid=(0x[0-9a-fA-F]+)`)
	nidRe        = regexp.MustCompile(`\bnid=(0x[0-9a-fA-F]+)`)
	cpuRe        = regexp.MustCompile(`\bcpu=([0-9]+(?:\.[0-9]+)?)(s|ms|us|ns)?`)
	elapsedRe    = regexp.MustCompile(`\belapsed=([0-9]+(?:\.[0-9]+)?)(s|ms|us|ns)?`)
)

// isThreadHeader reports whether line opens a new thread block: a line is a
// thread header iff it begins with a double-quoted name (spec §4.1).
func isThreadHeader(line string) bool {
	return headerNameRe.MatchString(line)
}

// parseHeader extracts the recognized optional tokens from a thread header
// line, leniently: absent or unparsable tokens are simply left nil.
func parseHeader(line string) *ThreadInfo {
	m := headerNameRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	t := &ThreadInfo{Name: m[1], State: Runnable}
	rest := m[2]

	if sub := javaIDRe.FindStringSubmatch(rest); sub != nil {
		if v, err := strconv.ParseInt(sub[1], 10, 64); err == nil {
			t.JavaID = &v
		}
	}
	if daemonRe.MatchString(rest) {
		t.Daemon = true
	}
	if sub := prioRe.FindStringSubmatch(rest); sub != nil {
		if v, err := strconv.Atoi(sub[1]); err == nil {
			t.Priority = &v
		}
	}
	if sub := tidRe.FindStringSubmatch(rest); sub != nil {
		v := sub[1]
		t.VMThreadPtr = &v
	}
	if sub := nidRe.FindStringSubmatch(rest); sub != nil {
		v := sub[1]
		t.NativeID = &v
	}
	if sub := cpuRe.FindStringSubmatch(rest); sub != nil {
		if v, ok := secondsFromValueUnit(sub[1], sub[2]); ok {
			t.CPUTimeSec = &v
		}
	}
	if sub := elapsedRe.FindStringSubmatch(rest); sub != nil {
		if v, ok := secondsFromValueUnit(sub[1], sub[2]); ok {
			t.ElapsedTimeSec = &v
		}
	}
	return t
}

// secondsFromValueUnit converts a numeric token plus an optional unit
// (s, ms, us, ns; empty treated as seconds) into fractional seconds.
func secondsFromValueUnit(value, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	switch unit {
	case "", "s":
		return v, true
	case "ms":
		return v / 1e3, true
	case "us":
		return v / 1e6, true
	case "ns":
		return v / 1e9, true
	default:
		return 0, false
	}
}
