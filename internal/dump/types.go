// Package dump implements the lenient thread-dump parser (spec §4.1): it
// turns the raw text of a jstack/jcmd capture into a ThreadDump value. All
// types here are immutable once constructed — analyzers downstream hold
// shared read-only references into them, never copies.
package dump

import "time"

// ThreadState is the canonical six-value thread-state enumeration. An
// unrecognized or missing state string always degrades to Runnable.
type ThreadState string

const (
	New           ThreadState = "NEW"
	Runnable      ThreadState = "RUNNABLE"
	Blocked       ThreadState = "BLOCKED"
	Waiting       ThreadState = "WAITING"
	TimedWaiting  ThreadState = "TIMED_WAITING"
	Terminated    ThreadState = "TERMINATED"
)

// SourceFormat tags which diagnostic producer emitted the dump.
type SourceFormat string

const (
	SourceJstack  SourceFormat = "jstack"
	SourceJcmd    SourceFormat = "jcmd"
	SourceUnknown SourceFormat = "unknown"
)

// LockKind is the four lock-relationship verbs recognized in a thread body.
type LockKind string

const (
	LockLocked        LockKind = "locked"
	LockWaitingOn     LockKind = "waiting on"
	LockWaitingToLock LockKind = "waiting to lock"
	LockParking       LockKind = "parking"
)

// StackFrame is one "at Class.method(File.java:N)" line.
type StackFrame struct {
	Class  string `json:"class"`
	Method string `json:"method"`
	File   *string `json:"file,omitempty"`
	Line   *int    `json:"line,omitempty"`
	Native bool    `json:"native,omitempty"`
}

// Equal compares two frames ignoring nothing — class, method, file and line
// all participate, per spec §4.4's "stack changed" definition.
func (f StackFrame) Equal(other StackFrame) bool {
	if f.Class != other.Class || f.Method != other.Method || f.Native != other.Native {
		return false
	}
	if (f.File == nil) != (other.File == nil) {
		return false
	}
	if f.File != nil && *f.File != *other.File {
		return false
	}
	if (f.Line == nil) != (other.Line == nil) {
		return false
	}
	if f.Line != nil && *f.Line != *other.Line {
		return false
	}
	return true
}

// LockInfo is one "- <kind> <id> (a Class)" body line. Lock ids are opaque
// strings that vary run to run, but they still round-trip verbatim through
// JSON.
type LockInfo struct {
	ID    string   `json:"id"`
	Class string   `json:"class"`
	Kind  LockKind `json:"kind"`
}

// JniInfo merges the two "JNI global refs" lines the JVM prints separately.
type JniInfo struct {
	GlobalRefs       *int64 `json:"globalRefs,omitempty"`
	WeakRefs         *int64 `json:"weakRefs,omitempty"`
	GlobalRefsMemory *int64 `json:"globalRefsMemory,omitempty"`
	WeakRefsMemory   *int64 `json:"weakRefsMemory,omitempty"`
}

// ThreadInfo is one parsed thread, in whatever order the parser ultimately
// settles on (source order, after any reverse-order normalization).
type ThreadInfo struct {
	Name           string       `json:"name"`
	JavaID         *int64       `json:"javaId,omitempty"`
	NativeID       *string      `json:"nativeId,omitempty"`
	VMThreadPtr    *string      `json:"vmThreadPtr,omitempty"`
	Priority       *int         `json:"priority,omitempty"`
	Daemon         bool         `json:"daemon,omitempty"`
	State          ThreadState  `json:"state"`
	CPUTimeSec     *float64     `json:"cpuTimeSec,omitempty"`
	ElapsedTimeSec *float64     `json:"elapsedTimeSec,omitempty"`
	Stack          []StackFrame `json:"stack,omitempty"`
	Locks          []LockInfo   `json:"locks,omitempty"`
	WaitingOnLock  *string      `json:"waitingOnLock,omitempty"`
	Extra          []string     `json:"extra,omitempty"`
}

// DeadlockedThread is one participant of a JVM-confirmed deadlock, captured
// over the parser's two deadlock-section passes (spec §4.1).
type DeadlockedThread struct {
	Name                 string       `json:"name"`
	WaitingForMonitor     string       `json:"waitingForMonitor"`
	WaitingForObjectID    string       `json:"waitingForObjectId"`
	WaitingForObjectType  string       `json:"waitingForObjectType"`
	HeldByThread          string       `json:"heldByThread"`
	Stack                 []StackFrame `json:"stack,omitempty"`
	Locks                 []LockInfo   `json:"locks,omitempty"`
}

// DeadlockInfo is one "Found one Java-level deadlock:" block. Always has at
// least two threads when produced by the parser.
type DeadlockInfo struct {
	Threads []DeadlockedThread `json:"threads"`
}

// ThreadDump is the parser's top-level result: one capture of a JVM's
// threads at an instant. ThreadDump exclusively owns its ThreadInfos.
type ThreadDump struct {
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Banner    *string        `json:"banner,omitempty"`
	Threads   []*ThreadInfo  `json:"threads"`
	Jni       *JniInfo       `json:"jni,omitempty"`
	Source    SourceFormat   `json:"source"`
	Deadlocks []*DeadlockInfo `json:"deadlocks,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ThreadByName scopes a linear search to this single dump (§4.2 uses this
// per-dump; cross-dump lookups go through AnalysisContext).
func (d *ThreadDump) ThreadByName(name string) *ThreadInfo {
	for _, t := range d.Threads {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ThreadByNativeID scopes a linear search to this single dump.
func (d *ThreadDump) ThreadByNativeID(nativeID string) *ThreadInfo {
	for _, t := range d.Threads {
		if t.NativeID != nil && *t.NativeID == nativeID {
			return t
		}
	}
	return nil
}
