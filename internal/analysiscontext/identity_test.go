package analysiscontext

import (
	"testing"

	"github.com/jstall/jstall/internal/dump"
)

func ptr[T any](v T) *T { return &v }

func TestIdentify_NativeIDTakesPriority(t *testing.T) {
	a := &dump.ThreadInfo{Name: "a", NativeID: ptr("0x1"), JavaID: ptr(int64(1))}
	b := &dump.ThreadInfo{Name: "b", NativeID: ptr("0x1"), JavaID: ptr(int64(2))}
	if Identify(a) != Identify(b) {
		t.Errorf("expected threads with same native id to match regardless of java id/name")
	}
}

func TestIdentify_JavaIDFallback(t *testing.T) {
	a := &dump.ThreadInfo{Name: "a", JavaID: ptr(int64(7))}
	b := &dump.ThreadInfo{Name: "b", JavaID: ptr(int64(7))}
	if Identify(a) != Identify(b) {
		t.Errorf("expected threads with same java id (no native id) to match")
	}
}

func TestIdentify_NameFallback(t *testing.T) {
	a := &dump.ThreadInfo{Name: "worker-1"}
	b := &dump.ThreadInfo{Name: "worker-1"}
	id := Identify(a)
	if id != Identify(b) {
		t.Errorf("expected same-name threads with no ids to match")
	}
	if !id.IsNameFallback() {
		t.Errorf("expected name-only identifier to report fallback")
	}
}

func TestIdentify_MixedPresenceDoesNotFallThrough(t *testing.T) {
	// a has a native id; b lacks one but happens to share a's java id.
	// Per the priority rule, fallback to java id only applies when BOTH
	// sides lack the higher-priority field — so these must NOT match.
	a := &dump.ThreadInfo{Name: "a", NativeID: ptr("0x1"), JavaID: ptr(int64(9))}
	b := &dump.ThreadInfo{Name: "b", JavaID: ptr(int64(9))}
	if Identify(a) == Identify(b) {
		t.Errorf("expected mixed native/java presence to NOT match via java id")
	}
}

func TestIdentify_MatchingIsSymmetric(t *testing.T) {
	pairs := []*dump.ThreadInfo{
		{Name: "x", NativeID: ptr("0xA")},
		{Name: "x", NativeID: ptr("0xA")},
		{Name: "y", JavaID: ptr(int64(3))},
		{Name: "y", JavaID: ptr(int64(3))},
		{Name: "z"},
		{Name: "z"},
	}
	for i := 0; i < len(pairs); i += 2 {
		a, b := pairs[i], pairs[i+1]
		if (Identify(a) == Identify(b)) != (Identify(b) == Identify(a)) {
			t.Errorf("matching is not symmetric for pair %d", i/2)
		}
	}
}

func TestIdentify_DifferentNativeIDsDoNotMatch(t *testing.T) {
	a := &dump.ThreadInfo{Name: "a", NativeID: ptr("0x1")}
	b := &dump.ThreadInfo{Name: "a", NativeID: ptr("0x2")}
	if Identify(a) == Identify(b) {
		t.Errorf("expected distinct native ids to not match even with identical names")
	}
}
