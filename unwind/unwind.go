// unwind.go — thin facade over runtime.Callers/CallersFrames that fills a
// record.CallInfo from the calling goroutine's stack. The pool and collector
// never call this directly: a producer calls Capture when it wants to take
// a sample, and hands the filled CallInfo to pool.NextWritable's slot.

package unwind

import (
	"runtime"
	"time"

	"samplepool/record"
)

// skipCallerAndCapture accounts for Capture's own frame plus runtime.Callers'.
const skipCallerAndCapture = 2

// Capture fills dst with the caller's current top-of-stack frame, skip
// frames above the immediate caller of Capture. skip 0 captures the
// function that called Capture.
func Capture(dst *record.CallInfo, skip int) {
	var pcs [1]uintptr
	n := runtime.Callers(skipCallerAndCapture+skip, pcs[:])

	dst.CapturedAtUnixNano = time.Now().UnixNano()

	if n == 0 {
		dst.FrameNameLen = 0
		dst.Line = 0
		dst.StackDepth = 0
		return
	}

	frames := runtime.CallersFrames(pcs[:n])
	frame, _ := frames.Next()

	dst.SetFrameName(frame.Function)
	dst.Line = uint32(frame.Line)
	dst.StackDepth = uint16(Depth(skip + 1))
}

// Depth reports how many frames are available above the caller of Depth,
// skip frames further up. Walks the full stack, so it is far more
// expensive than Capture and is meant for diagnostics, not the hot path.
func Depth(skip int) int {
	pcs := make([]uintptr, 64)
	for {
		n := runtime.Callers(skipCallerAndCapture+skip, pcs)
		if n < len(pcs) {
			return n
		}
		pcs = make([]uintptr, len(pcs)*2)
	}
}
