package dump

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	stateRe   = regexp.MustCompile(`^\s*java\.lang\.Thread\.State:\s*(\S+)`)
	frameRe   = regexp.MustCompile(`^\s*at\s+(\S+)\((.*)\)\s*$`)
	modulePfx = regexp.MustCompile(`^[^/@]+@[^/]+/`)

	lockedRe     = regexp.MustCompile(`^\s*-\s*locked\s+<?(0x[0-9a-fA-F]+)>?\s*\(a\s+(.+?)\)\s*$`)
	waitingOnRe  = regexp.MustCompile(`^\s*-\s*waiting on\s+<?(0x[0-9a-fA-F]+)>?\s*\(a\s+(.+?)\)\s*$`)
	waitingLckRe = regexp.MustCompile(`^\s*-\s*waiting to lock\s+<?(0x[0-9a-fA-F]+)>?\s*\(a\s+(.+?)\)\s*$`)
	parkingRe    = regexp.MustCompile(`^\s*-\s*parking to wait for\s+<?(0x[0-9a-fA-F]+)>?\s*\(a\s+(.+?)\)\s*$`)
)

// parseFrame turns a "at Class.method(location)" line into a StackFrame.
// Returns ok=false if line doesn't match, leaving the caller to treat it as
// free-form extra text.
func parseFrame(line string) (StackFrame, bool) {
	m := frameRe.FindStringSubmatch(line)
	if m == nil {
		return StackFrame{}, false
	}
	qualified := modulePfx.ReplaceAllString(m[1], "")
	class, method := splitClassMethod(qualified)
	location := strings.TrimSpace(m[2])

	f := StackFrame{Class: class, Method: method}
	switch {
	case location == "Native Method":
		f.Native = true
	case location == "Unknown Source":
		// file stays nil
	case location == "":
		// nothing usable
	default:
		if idx := strings.LastIndex(location, ":"); idx >= 0 {
			file := location[:idx]
			if line, err := strconv.Atoi(location[idx+1:]); err == nil {
				f.File = &file
				f.Line = &line
				break
			}
		}
		file := location
		f.File = &file
	}
	return f, true
}

// splitClassMethod splits a "a.b.C.method" qualified name at the final dot.
func splitClassMethod(qualified string) (class, method string) {
	idx := strings.LastIndex(qualified, ".")
	if idx < 0 {
		return "", qualified
	}
	return qualified[:idx], qualified[idx+1:]
}

// parseThreadState maps a raw state token to the canonical enumeration,
// degrading unknown values to Runnable per spec §3/§4.1.
func parseThreadState(raw string) (ThreadState, bool) {
	switch ThreadState(raw) {
	case New, Runnable, Blocked, Waiting, TimedWaiting, Terminated:
		return ThreadState(raw), true
	default:
		return Runnable, false
	}
}

// lockLineKind classifies a "- ..." body line, returning its kind, lock id
// and backing class, or ok=false if the line isn't a recognized lock line.
func lockLineKind(line string) (kind LockKind, id, class string, ok bool) {
	if m := lockedRe.FindStringSubmatch(line); m != nil {
		return LockLocked, m[1], m[2], true
	}
	if m := waitingOnRe.FindStringSubmatch(line); m != nil {
		return LockWaitingOn, m[1], m[2], true
	}
	if m := waitingLckRe.FindStringSubmatch(line); m != nil {
		return LockWaitingToLock, m[1], m[2], true
	}
	if m := parkingRe.FindStringSubmatch(line); m != nil {
		return LockParking, m[1], m[2], true
	}
	return "", "", "", false
}
