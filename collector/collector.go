// ════════════════════════════════════════════════════════════════════════════════════════════════
// ADAPTIVE POOL COLLECTOR
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: Consumer-Side Runner
//
// Description:
//   An optional goroutine that runs the "Consumer" role of a pool.Pool: it
//   attaches, repeatedly drains readable slots into a handler, and detaches
//   on shutdown. Polling posture adapts to the pool's own state — hot
//   (continuous poll) while slots are arriving or the overflow counter is
//   still climbing, cool (CPU-relaxed backoff) once both have been quiet
//   past hotWindow. There is no externally-signaled activity flag: a
//   rising overflow count means the producer is already outrunning this
//   consumer, so backing off would only drop more samples.
//
// Threading model:
//   - Exactly one Run call per pool.Pool at a time (SPSC consumer discipline)
//   - Optionally locks its goroutine to an OS thread and pins it to a core
// ════════════════════════════════════════════════════════════════════════════════════════════════

package collector

import (
	"runtime"
	"time"

	"samplepool/pool"
)

const (
	// hotWindow is how long the collector keeps busy-polling after the last
	// observed slot or overflow-count change.
	hotWindow = 5 * time.Second

	// spinBudget is the number of consecutive empty polls before the
	// collector yields the CPU via cpuRelax.
	spinBudget = 224
)

// Options configures a Run call.
type Options struct {
	// Core, if non-negative, pins the collector goroutine to that CPU core.
	// Negative leaves scheduling to the Go runtime. The zero value 0 pins
	// to core 0.
	Core int

	// Stop, if non-nil, is polled every iteration; a non-zero value ends
	// the run after a clean Detach. If nil, Run never returns — callers
	// that want graceful shutdown should always supply one, shared with
	// every other goroutine touching p.
	Stop *uint32
}

// Run drains p until *opts.Stop becomes non-zero, calling handler for every
// slot the pool publishes. It returns the pool's final (r, w) snapshot from
// Detach.
//
// Run blocks the calling goroutine; callers that want a background
// collector should invoke Run from inside their own `go` statement.
func Run[T any](p *pool.Pool[T], opts Options, handler func(*pool.Slot[T])) (r, w uint64) {
	if opts.Core >= 0 {
		runtime.LockOSThread()
		setAffinity(opts.Core)
		defer runtime.UnlockOSThread()
	}

	p.Attach()
	defer func() { r, w = p.Detach() }()

	var miss int
	lastHit := time.Now()
	lastOverflow := p.OverflowCount()
	var prev *pool.Slot[T]

	for {
		if opts.Stop != nil && *opts.Stop != 0 {
			return
		}

		if s := p.NextReadable(prev); s != nil {
			handler(s)
			prev = s
			miss = 0
			lastHit = time.Now()
			continue
		}

		if overflow := p.OverflowCount(); overflow != lastOverflow {
			// The producer is overwriting unread slots right now; backing
			// off would only lose more of them.
			lastOverflow = overflow
			lastHit = time.Now()
			continue
		}

		if time.Since(lastHit) <= hotWindow {
			continue
		}

		if miss++; miss >= spinBudget {
			miss = 0
			cpuRelax()
		}
	}
}
