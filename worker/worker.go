// ════════════════════════════════════════════════════════════════════════════════════════════════
// BACKGROUND FLUSH QUEUE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: Bounded MPSC Hand-off Queue
//
// Description:
//   A generic bounded queue the collector uses to hand drained records off
//   to a slow sink (a diagnostics store, a file, a network exporter)
//   without blocking its own drain loop on that sink's latency. Sequence
//   numbers per slot give lock-free multi-producer enqueue and a
//   single-consumer dequeue loop, the same shape as a bounded MPSC ring,
//   generalized from byte-slice tasks to an arbitrary payload type.
//
// Non-goal: this is explicitly NOT the wait-free sample pool — it may
// block (SubmitWait) or report "full" (Submit), and it is multi-producer
// capable. It exists only as ambient plumbing around the pool, never on
// its hot path.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
)

type slot[T any] struct {
	seq atomic.Uint64
	val T
}

// Queue is a bounded, lock-free multi-producer/single-consumer queue.
// Capacity must be a power of two.
type Queue[T any] struct {
	_        [64]byte
	mask     uint64
	capacity uint64
	slots    []slot[T]
	_        [64]byte
	enqueue  atomic.Uint64 // producer-side tail
	_        [64]byte
	dequeue  uint64 // consumer-side head; single consumer only
	_        [64]byte

	submitAttempts uint64
	submitFull     uint64
	submitRetries  uint64
}

// Stats reports counters useful for sizing a Queue correctly.
type Stats struct {
	SubmitAttempts uint64
	SubmitFull     uint64
	SubmitRetries  uint64
}

// ErrQueueFull is returned by SubmitWait when ctx is cancelled before a
// slot becomes available.
var ErrQueueFull = fmt.Errorf("worker: queue full")

// NewQueue constructs a bounded queue. capacity must be a power of two.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 || (capacity&(capacity-1)) != 0 {
		return nil, fmt.Errorf("worker: capacity must be a power of two > 0, got %d", capacity)
	}

	slots := make([]slot[T], capacity)
	for i := range slots {
		slots[i].seq.Store(2 * uint64(i))
	}

	return &Queue[T]{
		mask:     uint64(capacity - 1),
		capacity: uint64(capacity),
		slots:    slots,
	}, nil
}

// Submit enqueues v without blocking. It returns false if the queue is
// full. Safe to call concurrently from multiple goroutines.
func (q *Queue[T]) Submit(v T) bool {
	atomic.AddUint64(&q.submitAttempts, 1)
	for {
		pos := q.enqueue.Load()
		s := &q.slots[pos&q.mask]

		// seq is 2*pos when the slot is free for pos and 2*pos+1 once filled,
		// so a filled slot is never mistaken for a free one, even at capacity 1.
		seq := s.seq.Load()
		diff := int64(seq) - int64(2*pos)

		switch {
		case diff == 0:
			if q.enqueue.CompareAndSwap(pos, pos+1) {
				s.val = v
				s.seq.Store(2*pos + 1)
				return true
			}
			atomic.AddUint64(&q.submitRetries, 1)
		case diff < 0:
			atomic.AddUint64(&q.submitFull, 1)
			return false
		default:
			atomic.AddUint64(&q.submitRetries, 1)
			runtime.Gosched()
		}
	}
}

// SubmitWait enqueues v, retrying with brief yields until it succeeds or
// ctx is done. Use Submit instead when the caller should never block.
func (q *Queue[T]) SubmitWait(ctx context.Context, v T) error {
	for {
		if q.Submit(v) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ErrQueueFull
		default:
			runtime.Gosched()
		}
	}
}

// Next pops the next queued value. Must be called from a single consumer
// goroutine.
func (q *Queue[T]) Next() (T, bool) {
	pos := q.dequeue
	s := &q.slots[pos&q.mask]

	seq := s.seq.Load()
	diff := int64(seq) - int64(2*pos+1)

	var zero T
	if diff != 0 {
		return zero, false
	}

	q.dequeue = pos + 1
	v := s.val
	s.seq.Store(2 * (pos + q.capacity))
	return v, true
}

// Stats returns a snapshot of this queue's counters.
func (q *Queue[T]) Stats() Stats {
	return Stats{
		SubmitAttempts: atomic.LoadUint64(&q.submitAttempts),
		SubmitFull:     atomic.LoadUint64(&q.submitFull),
		SubmitRetries:  atomic.LoadUint64(&q.submitRetries),
	}
}

// Capacity returns the fixed queue capacity.
func (q *Queue[T]) Capacity() uint64 { return q.capacity }

// Drain runs sink for every value Submit-ed to q until stop is non-zero and
// the queue is empty. Intended to run in its own goroutine, fed by a
// collector's drain loop.
func Drain[T any](q *Queue[T], stop *uint32, sink func(T)) {
	for {
		if v, ok := q.Next(); ok {
			sink(v)
			continue
		}
		if stop != nil && atomic.LoadUint32(stop) != 0 {
			return
		}
		runtime.Gosched()
	}
}
