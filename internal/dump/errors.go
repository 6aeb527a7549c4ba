package dump

import "github.com/jstall/jstall/internal/jstallerr"

// errIORead wraps a failure from the parser's line scanner (spec §7's
// IO_READ). Parse reads from an in-memory string, so this surfaces only when
// a single line exceeds the scanner's 16 MiB buffer.
func errIORead(err error) error {
	return jstallerr.Wrap(jstallerr.IORead, "reading thread dump input", err)
}
