package dump

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jstall/jstall/internal/jstallerr"
	"github.com/sirupsen/logrus"
)

// mode models the parser's position explicitly rather than through method
// polymorphism, per the design note in spec §9.
type mode int

const (
	modeTopLevel mode = iota
	modeInThread
	modeInDeadlockDesc
	modeInDeadlockStack
)

var (
	deadlockTriggerRe  = regexp.MustCompile(`Found one Java-level deadlock:`)
	deadlockSummaryRe  = regexp.MustCompile(`^Found \d+ deadlocks?\.`)
	deadlockSeparator  = "Java stack information for the threads listed above:"
	deadlockNameRe     = regexp.MustCompile(`^"(.+)":\s*$`)
	deadlockWaitLockRe = regexp.MustCompile(`waiting to lock monitor\s+(0x[0-9a-fA-F]+)\s*\(object\s+(0x[0-9a-fA-F]+),\s*a\s+([^)]+)\)`)
	deadlockHeldByRe   = regexp.MustCompile(`which is held by\s+"([^"]+)"`)

	jniRefsRe = regexp.MustCompile(`JNI global refs:\s*(\d+),\s*weak refs:\s*(\d+)`)
	jniMemRe  = regexp.MustCompile(`JNI global refs memory usage:\s*(\d+),\s*weak refs:\s*(\d+)`)

	bannerRe = regexp.MustCompile(`Full thread dump|Thread dump`)
)

// timestampLayouts are tried in order against a dump's leading line; the
// first one that parses wins. Leniency here matches the rest of the parser:
// an unparsable leading line is simply not treated as a timestamp.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
}

// Parse parses the full text of a jstack/jcmd thread-dump capture. It fails
// only on an I/O fault from the reader; malformed lines are skipped or
// best-effort interpreted (spec §4.1).
func Parse(text string) (*ThreadDump, error) {
	return ParseWithLogger(text, logrus.StandardLogger())
}

// ParseWithLogger is Parse with an explicit logger for parse warnings. Only
// unrecognized thread states are logged (and recorded in
// ThreadDump.Warnings); other malformed lines are neither logged nor counted.
func ParseWithLogger(text string, log logrus.FieldLogger) (*ThreadDump, error) {
	p := &parser{log: log}
	return p.run(text)
}

type parser struct {
	log logrus.FieldLogger

	d       *ThreadDump
	mode    mode
	current *ThreadInfo
	pending *ThreadInfo // reverse-order buffered body lines awaiting a header
	reversedOccurred bool

	deadlockNames   []string
	deadlockThreads map[string]*DeadlockedThread
	deadlockOpen    string // name currently receiving frames/locks in pass 2

	lineNum int
}

func (p *parser) run(text string) (*ThreadDump, error) {
	p.d = &ThreadDump{Source: detectSource(text)}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	first := true
	for scanner.Scan() {
		p.lineNum++
		line := scanner.Text()
		if first {
			first = false
			if ts, err := parseLeadingTimestamp(line); err == nil {
				p.d.Timestamp = &ts
				continue
			}
		}
		p.processLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errIORead(err)
	}

	p.flushCurrent()
	p.finalizeDeadlockIfAny()

	if p.reversedOccurred {
		reverseThreads(p.d.Threads)
	}
	return p.d, nil
}

func (p *parser) processLine(line string) {
	if bannerRe.MatchString(line) && p.d.Banner == nil {
		b := strings.TrimSpace(line)
		p.d.Banner = &b
	}

	if deadlockTriggerRe.MatchString(line) {
		p.finalizeDeadlockIfAny()
		p.flushCurrent()
		p.mode = modeInDeadlockDesc
		p.deadlockNames = nil
		p.deadlockThreads = map[string]*DeadlockedThread{}
		p.deadlockOpen = ""
		return
	}

	switch p.mode {
	case modeInDeadlockDesc:
		p.processDeadlockDescLine(line)
		return
	case modeInDeadlockStack:
		p.processDeadlockStackLine(line)
		return
	}

	if m := jniRefsRe.FindStringSubmatch(line); m != nil {
		p.ensureJni()
		p.d.Jni.GlobalRefs = parseInt64Ptr(m[1])
		p.d.Jni.WeakRefs = parseInt64Ptr(m[2])
		return
	}
	if m := jniMemRe.FindStringSubmatch(line); m != nil {
		p.ensureJni()
		p.d.Jni.GlobalRefsMemory = parseInt64Ptr(m[1])
		p.d.Jni.WeakRefsMemory = parseInt64Ptr(m[2])
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		p.flushCurrent()
		p.mode = modeTopLevel
		return
	}

	if isThreadHeader(line) {
		p.flushCurrent()
		t := parseHeader(line)
		if p.pending != nil {
			p.attachPending(t)
		}
		p.current = t
		p.mode = modeInThread
		return
	}

	if p.mode == modeInThread {
		p.processThreadBodyLine(line)
		return
	}

	// No open thread: if this is a body line, buffer it in case this is
	// reverse-ordered input (body before header).
	p.bufferPending(line)
}

func (p *parser) ensureJni() {
	if p.d.Jni == nil {
		p.d.Jni = &JniInfo{}
	}
}

func (p *parser) processThreadBodyLine(line string) {
	t := p.current
	if m := stateRe.FindStringSubmatch(line); m != nil {
		state, known := parseThreadState(m[1])
		t.State = state
		if !known {
			p.warnf(jstallerr.UnknownThreadState, "thread %q: unknown state %q, defaulting to RUNNABLE", t.Name, m[1])
		}
		return
	}
	if f, ok := parseFrame(line); ok {
		t.Stack = append(t.Stack, f)
		return
	}
	if kind, id, class, ok := lockLineKind(line); ok {
		t.Locks = append(t.Locks, LockInfo{ID: id, Class: class, Kind: kind})
		if kind == LockWaitingOn || kind == LockWaitingToLock || kind == LockParking {
			idCopy := id
			t.WaitingOnLock = &idCopy
		}
		return
	}
	t.Extra = append(t.Extra, line)
}

// bufferPending accumulates a body-shaped line (state/frame/lock) seen
// before any thread header, for the reverse-order tolerance in spec §4.1.
// Any other line (a banner, a separator) is dropped.
func (p *parser) bufferPending(line string) {
	_, isFrame := parseFrame(line)
	_, _, _, isLock := lockLineKind(line)
	if !stateRe.MatchString(line) && !isFrame && !isLock {
		return
	}
	if p.pending == nil {
		p.pending = &ThreadInfo{State: Runnable}
	}
	t := p.pending
	if m := stateRe.FindStringSubmatch(line); m != nil {
		state, _ := parseThreadState(m[1])
		t.State = state
		return
	}
	if f, ok := parseFrame(line); ok {
		t.Stack = append(t.Stack, f)
		return
	}
	if kind, id, class, ok := lockLineKind(line); ok {
		t.Locks = append(t.Locks, LockInfo{ID: id, Class: class, Kind: kind})
		if kind == LockWaitingOn || kind == LockWaitingToLock || kind == LockParking {
			idCopy := id
			t.WaitingOnLock = &idCopy
		}
	}
}

// attachPending merges buffered reverse-order material onto a freshly
// parsed header, reversing stack frames and locks to restore intra-thread
// order, and marks the dump for a final whole-list reversal.
func (p *parser) attachPending(t *ThreadInfo) {
	pend := p.pending
	p.pending = nil

	t.State = pend.State
	t.Stack = reverseFrames(pend.Stack)
	t.Locks = reverseLocks(pend.Locks)
	t.WaitingOnLock = pend.WaitingOnLock
	t.Extra = pend.Extra

	p.reversedOccurred = true
}

func (p *parser) flushCurrent() {
	if p.current == nil {
		return
	}
	p.d.Threads = append(p.d.Threads, p.current)
	p.current = nil
}

func (p *parser) processDeadlockDescLine(line string) {
	if strings.Contains(line, deadlockSeparator) {
		p.mode = modeInDeadlockStack
		p.deadlockOpen = ""
		return
	}
	if m := deadlockNameRe.FindStringSubmatch(line); m != nil {
		name := m[1]
		p.deadlockNames = append(p.deadlockNames, name)
		p.deadlockThreads[name] = &DeadlockedThread{Name: name}
		p.deadlockOpen = name
		return
	}
	if p.deadlockOpen == "" {
		return
	}
	dt := p.deadlockThreads[p.deadlockOpen]
	if m := deadlockWaitLockRe.FindStringSubmatch(line); m != nil {
		dt.WaitingForMonitor = m[1]
		dt.WaitingForObjectID = m[2]
		dt.WaitingForObjectType = m[3]
		return
	}
	if m := deadlockHeldByRe.FindStringSubmatch(line); m != nil {
		dt.HeldByThread = m[1]
		return
	}
}

func (p *parser) processDeadlockStackLine(line string) {
	if deadlockSummaryRe.MatchString(line) {
		// Ignored per spec §4.1: not a terminator.
		return
	}
	if m := deadlockNameRe.FindStringSubmatch(line); m != nil {
		p.deadlockOpen = m[1]
		return
	}
	if p.deadlockOpen == "" {
		return
	}
	dt := p.deadlockThreads[p.deadlockOpen]
	if dt == nil {
		return
	}
	if f, ok := parseFrame(line); ok {
		dt.Stack = append(dt.Stack, f)
		return
	}
	if kind, id, class, ok := lockLineKind(line); ok {
		dt.Locks = append(dt.Locks, LockInfo{ID: id, Class: class, Kind: kind})
	}
}

func (p *parser) finalizeDeadlockIfAny() {
	if len(p.deadlockNames) == 0 {
		return
	}
	info := &DeadlockInfo{}
	for _, name := range p.deadlockNames {
		if dt := p.deadlockThreads[name]; dt != nil {
			info.Threads = append(info.Threads, *dt)
		}
	}
	if len(info.Threads) >= 2 {
		p.d.Deadlocks = append(p.d.Deadlocks, info)
	}
	p.deadlockNames = nil
	p.deadlockThreads = nil
	p.deadlockOpen = ""
}

func (p *parser) warnf(kind jstallerr.Kind, format string, args ...any) {
	p.d.Warnings = append(p.d.Warnings, string(kind))
	if p.log != nil {
		p.log.Warnf(format, args...)
	}
}

func detectSource(text string) SourceFormat {
	if strings.Contains(text, "jcmd") || strings.Contains(text, "Thread.print") {
		return SourceJcmd
	}
	if strings.Contains(text, "Full thread dump") || strings.Contains(text, "Thread dump") {
		return SourceJstack
	}
	return SourceUnknown
}

func parseLeadingTimestamp(line string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(line)); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

func parseInt64Ptr(s string) *int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func reverseFrames(in []StackFrame) []StackFrame {
	out := make([]StackFrame, len(in))
	for i, f := range in {
		out[len(in)-1-i] = f
	}
	return out
}

func reverseLocks(in []LockInfo) []LockInfo {
	out := make([]LockInfo, len(in))
	for i, l := range in {
		out[len(in)-1-i] = l
	}
	return out
}

func reverseThreads(in []*ThreadInfo) {
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
}
