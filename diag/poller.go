// poller.go — periodic collection of pool health snapshots.

package diag

import (
	"time"

	"samplepool/pool"
)

// PollerOptions configures Poll.
type PollerOptions struct {
	// Interval between snapshots. Must be positive.
	Interval time.Duration

	// Store, if non-nil, receives every snapshot taken.
	Store *Store

	// Stop, if non-nil, is checked between snapshots; a non-zero value
	// ends the poll loop.
	Stop *uint32
}

// Poll runs a diagnostics loop that periodically snapshots p, optionally
// recording each snapshot to opts.Store and always logging overflow growth.
// It blocks until opts.Stop becomes non-zero (or forever if Stop is nil, in
// which case callers should run Poll in its own goroutine and terminate the
// process instead).
func Poll[T any](p *pool.Pool[T], opts PollerOptions) {
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var lastOverflow uint64
	for {
		if opts.Stop != nil && *opts.Stop != 0 {
			return
		}
		<-ticker.C

		snap := Take(p)
		if snap.OverflowCount > lastOverflow {
			DropMessage("OVERFLOW", "pool dropped samples")
			lastOverflow = snap.OverflowCount
		}
		if opts.Store != nil {
			if err := opts.Store.Record(snap); err != nil {
				DropError("diag: record snapshot", err)
			}
		}
	}
}
