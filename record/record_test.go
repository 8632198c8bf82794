package record

import "testing"

func TestSetFrameNameRoundTrips(t *testing.T) {
	var c CallInfo
	c.SetFrameName("main.worker")
	if got := c.Name(); got != "main.worker" {
		t.Fatalf("Name() = %q, want %q", got, "main.worker")
	}
}

func TestSetFrameNameTruncatesLongNames(t *testing.T) {
	var c CallInfo
	long := ""
	for i := 0; i < MaxFrameName+10; i++ {
		long += "x"
	}
	c.SetFrameName(long)
	if int(c.FrameNameLen) != MaxFrameName {
		t.Fatalf("FrameNameLen = %d, want %d", c.FrameNameLen, MaxFrameName)
	}
	if len(c.Name()) != MaxFrameName {
		t.Fatalf("Name() length = %d, want %d", len(c.Name()), MaxFrameName)
	}
}

func TestZeroValueHasEmptyName(t *testing.T) {
	var c CallInfo
	if got := c.Name(); got != "" {
		t.Fatalf("Name() on zero value = %q, want empty", got)
	}
}
