package javaproc

import "testing"

func TestExtractMainClassFromCmdLine(t *testing.T) {
	cases := []struct {
		cmdLine string
		want    string
	}{
		{"java -Xmx1g com.example.App", "com.example.App"},
		{"java -jar app.jar", "app"},
		{"java", "Unknown"},
	}
	for _, c := range cases {
		if got := extractMainClassFromCmdLine(c.cmdLine); got != c.want {
			t.Errorf("extractMainClassFromCmdLine(%q) = %q, want %q", c.cmdLine, got, c.want)
		}
	}
}
