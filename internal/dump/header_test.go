package dump

import "testing"

func TestParseHeader_AllTokens(t *testing.T) {
	line := `"pool-1-thread-2" #15 daemon prio=5 tid=0x00007f1 nid=0x4a2b cpu=123.45ms elapsed=12.3s runnable`
	t_ := parseHeader(line)
	if t_ == nil {
		t.Fatal("expected header to parse")
	}
	if t_.Name != "pool-1-thread-2" {
		t.Errorf("unexpected name %q", t_.Name)
	}
	if t_.JavaID == nil || *t_.JavaID != 15 {
		t.Errorf("unexpected javaId %v", t_.JavaID)
	}
	if !t_.Daemon {
		t.Errorf("expected daemon=true")
	}
	if t_.Priority == nil || *t_.Priority != 5 {
		t.Errorf("unexpected priority %v", t_.Priority)
	}
	if t_.NativeID == nil || *t_.NativeID != "0x4a2b" {
		t.Errorf("unexpected nativeId %v", t_.NativeID)
	}
	if t_.CPUTimeSec == nil || *t_.CPUTimeSec != 0.12345 {
		t.Errorf("unexpected cpuTimeSec %v", t_.CPUTimeSec)
	}
	if t_.ElapsedTimeSec == nil || *t_.ElapsedTimeSec != 12.3 {
		t.Errorf("unexpected elapsedTimeSec %v", t_.ElapsedTimeSec)
	}
}

func TestParseHeader_MissingOptionalTokens(t *testing.T) {
	line := `"minimal"`
	t_ := parseHeader(line)
	if t_ == nil {
		t.Fatal("expected header to parse")
	}
	if t_.JavaID != nil || t_.NativeID != nil || t_.Priority != nil || t_.CPUTimeSec != nil {
		t.Errorf("expected all optional tokens nil, got %+v", t_)
	}
	if t_.Daemon {
		t.Errorf("expected daemon=false when not literally stated")
	}
}

func TestSecondsFromValueUnit(t *testing.T) {
	cases := []struct {
		value, unit string
		want        float64
	}{
		{"2", "s", 2},
		{"2", "", 2},
		{"2000", "ms", 2},
		{"2000000", "us", 2},
		{"2000000000", "ns", 2},
	}
	for _, c := range cases {
		got, ok := secondsFromValueUnit(c.value, c.unit)
		if !ok {
			t.Errorf("secondsFromValueUnit(%q, %q) failed to parse", c.value, c.unit)
			continue
		}
		if got != c.want {
			t.Errorf("secondsFromValueUnit(%q, %q) = %v, want %v", c.value, c.unit, got, c.want)
		}
	}
}

func TestIsThreadHeader(t *testing.T) {
	if !isThreadHeader(`"main" #1 prio=5`) {
		t.Error("expected quoted-name line to be recognized as a header")
	}
	if isThreadHeader(`   at Foo.bar(Foo.java:1)`) {
		t.Error("expected stack frame line to not be a header")
	}
}
