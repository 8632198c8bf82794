// ════════════════════════════════════════════════════════════════════════════════════════════════
// WAIT-FREE SPSC SAMPLE POOL
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: Producer/Consumer Buffer Pool
//
// Description:
//   Cache-aligned, power-of-two-sized circular pool of fixed-size slots shared
//   between exactly one producer and one optional consumer. The producer never
//   blocks, never spins, and never fails to obtain a writable slot; a lagging
//   consumer silently loses the newest unread data (the most recently
//   published slot is rewritten) rather than stalling the producer.
//
// Architecture overview:
//   - Two monotonic 64-bit cursors (W, R) coordinate ownership of N slots
//   - Power-of-2 sizing enables bitmask addressing instead of modulo
//   - W, R, the owning reference to storage, and the overflow counter are
//     packed into one cache line; the design tolerates the false sharing
//     this creates rather than spreading the hot fields out (see hot below)
//   - Detached-consumer sentinel makes "no consumer" behave like an
//     infinitely fast one, so the producer's admission check never special-cases it
//
// Safety model:
//   - Exactly one producer goroutine, exactly one consumer goroutine at a time
//   - attach()/detach() may run from any goroutine but must not race each other
//   - All hot-path operations are wait-free: bounded steps, no retries
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package pool

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CORE DATA STRUCTURES
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// rMaxBase is U64_MAX. The detached-consumer sentinel is rMaxBase - N: with
// R = U64_MAX - N, the producer's admission test W < R+N is true for any
// realistic W, so a detached consumer behaves indistinguishably from one
// that never falls behind.
const rMaxBase = ^uint64(0)

// Slot is a fixed-length run of B records of type T — the unit of claim and
// transfer between producer and consumer. Its backing array is part of the
// pool's single pre-allocated, prefaulted storage region; Slot never
// allocates after construction.
type Slot[T any] struct {
	Data []T
}

// hot holds every field either cursor's hot path touches: w, r, the owning
// reference to backing storage, and the overflow counter, packed into a
// single cache line with one trailing pad field — mirroring
// xpedite's WaitFreeBufferPool, whose _writeIndex, _readIndex, _pool and
// _overflowCount are laid out contiguously with a single
// const char _[ALIGNMENT - dataSize] pad and a static_assert that the whole
// object occupies exactly one line. Go has no static_assert; the
// compile-time size check below (in the style this corpus uses for padded
// atomics, see shardcache's util.PaddedAtomicUint64) plays the same role.
//
// backing stands in for the original's single owning pointer: Go slices
// need a length and capacity alongside the pointer to stay bounds-checked,
// so the "owning pointer to storage" invariant is satisfied by the widest
// idiomatic Go equivalent rather than a bare unsafe.Pointer.
type hot[T any] struct {
	w        atomic.Uint64 // producer-owned write cursor
	r        atomic.Uint64 // consumer-owned read cursor (rMax when detached)
	overflow atomic.Uint64 // producer-owned: admissions that could not advance w
	backing  []T           // N*B contiguous records, owned for this Pool's lifetime
	_        [16]byte      // pad: 8+8+8+24+16 = 64, one cache line
}

var _ [64 - int(unsafe.Sizeof(hot[byte]{}))]byte // hot must occupy exactly one cache line

// Pool is the circular buffer pool. The mask, slotLen and slots fields
// below are immutable after New and never touched by NextWritable or
// NextReadable, so they live outside the padded hot region without
// affecting the layout invariant.
type Pool[T any] struct {
	hot[T]

	mask    uint64    // slotCount - 1, for bitmask addressing
	slotLen int       // B: records per slot
	slots   []Slot[T] // N pre-built slot views into backing, for allocation-free lookup
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// New constructs a Pool holding slotCount slots of slotLen records each.
// slotCount must be a power of two greater than one; slotLen must be
// positive. The backing storage is allocated once and zero-initialized
// ("prefaulted") so the first producer touch never pages fault.
//
// New is the only place a Pool operation can fail; every hot-path method
// below never fails and never blocks.
func New[T any](slotLen, slotCount int) (*Pool[T], error) {
	if slotLen <= 0 {
		return nil, fmt.Errorf("pool: slotLen must be > 0, got %d", slotLen)
	}
	if slotCount <= 1 || (slotCount&(slotCount-1)) != 0 {
		return nil, fmt.Errorf("pool: slotCount must be a power of two > 1, got %d", slotCount)
	}

	backing := make([]T, slotCount*slotLen) // zero-initialized by make; prefaulted

	slots := make([]Slot[T], slotCount)
	for i := range slots {
		lo := i * slotLen
		slots[i].Data = backing[lo : lo+slotLen : lo+slotLen]
	}

	p := &Pool[T]{
		hot:     hot[T]{backing: backing},
		mask:    uint64(slotCount - 1),
		slotLen: slotLen,
		slots:   slots,
	}
	p.r.Store(p.rMax()) // detached sentinel: R_MAX = U64_MAX - N
	return p, nil
}

// rMax returns this pool's detached-consumer sentinel value.
func (p *Pool[T]) rMax() uint64 {
	return rMaxBase - (p.mask + 1)
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// PRODUCER PATH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// NextWritable returns the slot the producer should write into next. It
// never fails and never blocks.
//
// If the pool has room (w < r+N), w advances and the new slot is returned.
// If the pool is full, w is left unchanged, the overflow counter is
// incremented, and the slot at the current w is returned again — the
// producer overwrites the most-recently-published record, trading the
// freshest sample for guaranteed forward progress.
//
//go:nosplit
//go:inline
func (p *Pool[T]) NextWritable() *Slot[T] {
	w := p.w.Load()
	r := p.r.Load() // relaxed: only need an approximate lower bound on consumer progress

	n := p.mask + 1
	if w < r+n {
		w++
		p.w.Store(w) // release: publishes the prior slot's writes to the consumer
		return &p.slots[w&p.mask]
	}

	p.overflow.Add(1)
	return &p.slots[w&p.mask]
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSUMER PATH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// NextReadable returns the next unread slot, or nil if the producer hasn't
// published one yet. prev must be the slot previously returned by this
// function (or nil on the first call after Attach) — passing it tells the
// pool the consumer is done with it, advancing r.
//
// The returned slot stays valid for reading until the next call to
// NextReadable by the same consumer.
//
//go:nosplit
//go:inline
func (p *Pool[T]) NextReadable(prev *Slot[T]) *Slot[T] {
	r := p.r.Load()
	if prev != nil {
		r++
		p.r.Store(r) // atomic store (sequentially consistent in Go); the read of prev above is already complete
	}

	w := p.w.Load() // acquire: pairs with the producer's release store of w
	if w <= r {
		return nil
	}
	return &p.slots[(r+1)&p.mask]
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ATTACH / DETACH
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Attach installs a valid read cursor so that slots published from now on
// are retained for this consumer, and returns the (r, w) snapshot at the
// moment attachment became valid. At most one consumer may be attached at
// a time.
func (p *Pool[T]) Attach() (r, w uint64) {
	n := p.mask + 1
	for {
		w = p.w.Load()
		r = uint64(0)
		if w > 0 {
			r = w - 1
		}

		p.r.Store(r) // sequentially consistent: the one place global ordering matters

		w = p.w.Load()
		if w <= r+n {
			return r, w
		}
		// the producer lapped the proposed anchor during the race; retry
	}
}

// Detach withdraws the consumer, returning the (r, w) snapshot at the
// moment of withdrawal. After Detach, the producer's admission check
// always succeeds, as if no consumer were attached.
func (p *Pool[T]) Detach() (r, w uint64) {
	r = p.r.Load()
	w = p.w.Load()
	p.r.Store(p.rMax())
	return r, w
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// DIAGNOSTIC ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// WriteIndex returns the current write cursor.
func (p *Pool[T]) WriteIndex() uint64 { return p.w.Load() }

// ReadIndex returns the current read cursor (the detached sentinel if no
// consumer is attached).
func (p *Pool[T]) ReadIndex() uint64 { return p.r.Load() }

// OverflowCount returns the number of producer calls that could not
// advance the write cursor because the consumer was a full pool behind.
func (p *Pool[T]) OverflowCount() uint64 { return p.overflow.Load() }

// Capacity returns the number of slots N in this pool.
func (p *Pool[T]) Capacity() int { return int(p.mask + 1) }

// SlotLen returns the number of records B per slot.
func (p *Pool[T]) SlotLen() int { return p.slotLen }

// PeekRacy returns the slot at the current write cursor without any
// synchronization. It races with an active producer by design and exists
// only for crash-time forensic dumps — never call it from normal control
// flow.
func (p *Pool[T]) PeekRacy() *Slot[T] {
	w := p.w.Load()
	return &p.slots[w&p.mask]
}

