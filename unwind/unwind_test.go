package unwind

import (
	"strings"
	"testing"

	"samplepool/record"
)

func TestCaptureFillsFrameName(t *testing.T) {
	var c record.CallInfo
	Capture(&c, 0)

	if c.CapturedAtUnixNano == 0 {
		t.Fatalf("CapturedAtUnixNano not set")
	}
	if !strings.Contains(c.Name(), "TestCaptureFillsFrameName") {
		t.Fatalf("Name() = %q, want it to contain the calling test's name", c.Name())
	}
	if c.StackDepth == 0 {
		t.Fatalf("StackDepth not set")
	}
}

func TestCaptureFromNestedFunction(t *testing.T) {
	var c record.CallInfo
	func() {
		Capture(&c, 0)
	}()

	if c.Name() == "" {
		t.Fatalf("Name() empty after nested capture")
	}
}

func TestDepthIncreasesWithCallStack(t *testing.T) {
	var outer, inner int
	outer = Depth(0)
	func() {
		inner = Depth(0)
	}()

	if inner <= outer {
		t.Fatalf("Depth() inside nested call = %d, want > outer depth %d", inner, outer)
	}
}
