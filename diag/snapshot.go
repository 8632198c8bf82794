// snapshot.go — point-in-time read of a pool's counters, for the
// "a user who wants alerting polls this counter" diagnostics story.

package diag

import (
	"time"

	"samplepool/pool"
)

// Snapshot is a point-in-time read of a pool's diagnostic counters.
type Snapshot struct {
	TakenAtUnixNano int64  `json:"taken_at_unix_nano"`
	WriteIndex      uint64 `json:"write_index"`
	ReadIndex       uint64 `json:"read_index"`
	OverflowCount   uint64 `json:"overflow_count"`
	Capacity        int    `json:"capacity"`
	SlotLen         int    `json:"slot_len"`
}

// Take reads p's counters with the same relaxed accessors a diagnostics
// poller is meant to use — it never touches the hot path.
func Take[T any](p *pool.Pool[T]) Snapshot {
	return Snapshot{
		TakenAtUnixNano: time.Now().UnixNano(),
		WriteIndex:      p.WriteIndex(),
		ReadIndex:       p.ReadIndex(),
		OverflowCount:   p.OverflowCount(),
		Capacity:        p.Capacity(),
		SlotLen:         p.SlotLen(),
	}
}

// Backlog returns how many published slots have not yet been consumed,
// clamped to the pool's capacity (a lapped consumer can make the raw w-r
// difference exceed N transiently from the snapshot's point of view;
// Backlog reports what a reader would actually be able to drain). A
// detached pool's sentinel read index is above w, so its Backlog is 0.
func (s Snapshot) Backlog() uint64 {
	if s.WriteIndex <= s.ReadIndex {
		return 0
	}
	backlog := s.WriteIndex - s.ReadIndex
	if backlog > uint64(s.Capacity) {
		return uint64(s.Capacity)
	}
	return backlog
}
