package version

import (
	"strings"
	"testing"
)

// TestFlagEmpty fails if version.Flag is not empty, which it must be on the
// master branch.
func TestFlagEmpty(t *testing.T) {
	if len(Flag) > 0 {
		t.Fatalf("Version Flag is not empty: %s", Flag)
	}
}

func TestDescribe(t *testing.T) {
	d := Describe()
	if !strings.HasPrefix(d, Version) {
		t.Fatalf("description should start with the version: %s", d)
	}
	for _, v := range []string{"notary", "1.0", "2.0"} {
		if !strings.Contains(d, v) {
			t.Fatalf("description should mention %s: %s", v, d)
		}
	}
}
