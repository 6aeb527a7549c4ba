// Package jstallerr defines the error/warning kinds shared across jstall's
// parser, analysis context, analyzers and live sampler (spec §7).
package jstallerr

// Kind tags a recoverable warning or a terminal error so callers and logs
// can branch on it without string matching.
type Kind string

const (
	IORead              Kind = "IO_READ"
	MalformedLine       Kind = "MALFORMED_LINE"
	UnknownThreadState  Kind = "UNKNOWN_THREAD_STATE"
	MissingCPUTime      Kind = "MISSING_CPU_TIME"
	DuplicateDump       Kind = "DUPLICATE_DUMP"
	ThreadNameCollision Kind = "THREAD_NAME_COLLISION"
	InvalidOptions      Kind = "INVALID_OPTIONS"

	CaptureProcessNotFound Kind = "CAPTURE_PROCESS_NOT_FOUND"
	CaptureTimeout         Kind = "CAPTURE_TIMEOUT"
	CaptureNonzeroExit     Kind = "CAPTURE_NONZERO_EXIT"
	CaptureInterrupted     Kind = "CAPTURE_INTERRUPTED"
)

// Error wraps an underlying cause with a Kind, satisfying errors.Unwrap so
// callers can still errors.Is/As through to root causes (e.g. os/exec errors).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
