package analysiscontext

import (
	"strconv"

	"github.com/jstall/jstall/internal/dump"
)

type identKind int

const (
	identNative identKind = iota
	identJava
	identName
)

// ThreadIdentifier is the value type used to match the same logical thread
// across dumps (spec §3/§4.2/§9). Equality and hash agree with the
// priority-based matching rule: a native-id-bearing identifier compares
// equal to another native-id-bearing identifier with the same native id
// regardless of other fields; the java-id and name fallbacks apply only
// when every higher-priority field is absent on both sides. Because the
// comparison key below is derived from each thread's own highest-available
// field, two identifiers are comparable with plain ==, making
// ThreadIdentifier usable directly as a map key.
type ThreadIdentifier struct {
	kind identKind
	key  string
}

// Identify builds the ThreadIdentifier for a single thread, independent of
// any other thread — this is what lets two identifiers be compared with a
// plain equality check while still honoring the priority rule.
func Identify(t *dump.ThreadInfo) ThreadIdentifier {
	if t.NativeID != nil {
		return ThreadIdentifier{kind: identNative, key: *t.NativeID}
	}
	if t.JavaID != nil {
		return ThreadIdentifier{kind: identJava, key: strconv.FormatInt(*t.JavaID, 10)}
	}
	return ThreadIdentifier{kind: identName, key: t.Name}
}

// IsNameFallback reports whether this identifier was derived from the name
// fallback (spec's THREAD_NAME_COLLISION warning trigger): names can
// reappear across unrelated threads, so identity via name alone is weaker
// than native/java id matching.
func (id ThreadIdentifier) IsNameFallback() bool {
	return id.kind == identName
}

func (id ThreadIdentifier) String() string {
	switch id.kind {
	case identNative:
		return "nid:" + id.key
	case identJava:
		return "jid:" + id.key
	default:
		return "name:" + id.key
	}
}
