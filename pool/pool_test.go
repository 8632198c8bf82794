// ============================================================================
// WAIT-FREE SPSC SAMPLE POOL — CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Test categories:
//   - Constructor validation: power-of-two sizing, bad-argument rejection
//   - Producer path: admission, overwrite-on-full, overflow accounting
//   - Consumer path: attach/detach, FIFO drain, boundary conditions
//   - Concurrent end-to-end: lockstep producer/consumer, detached lag

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/sha3"
)

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New[uint64](0, 4); err == nil {
		t.Fatalf("expected error for slotLen=0")
	}
	if _, err := New[uint64](4, 0); err == nil {
		t.Fatalf("expected error for slotCount=0")
	}
	if _, err := New[uint64](4, 1); err == nil {
		t.Fatalf("expected error for slotCount=1 (must be >1)")
	}
	if _, err := New[uint64](4, 3); err == nil {
		t.Fatalf("expected error for slotCount=3 (not a power of two)")
	}
	if _, err := New[uint64](4, 4); err != nil {
		t.Fatalf("unexpected error for valid arguments: %v", err)
	}
}

// TestEmptyRead covers scenario 1: construct, attach, first read is none.
func TestEmptyRead(t *testing.T) {
	p, err := New[uint64](4, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r, w := p.Attach()
	if r != 0 || w != 0 {
		t.Fatalf("Attach at W=0: got (%d,%d), want (0,0)", r, w)
	}
	if s := p.NextReadable(nil); s != nil {
		t.Fatalf("expected nil on first read of an empty pool, got %v", s.Data)
	}
}

// TestSingleWriteRead covers scenario 2.
func TestSingleWriteRead(t *testing.T) {
	p, err := New[uint64](4, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	s := p.NextWritable()
	copy(s.Data, []uint64{1, 2, 3, 4})

	got := p.NextReadable(nil)
	if got == nil {
		t.Fatalf("expected a slot, got nil")
	}
	want := []uint64{1, 2, 3, 4}
	for i := range want {
		if got.Data[i] != want[i] {
			t.Fatalf("slot mismatch at %d: got %d, want %d", i, got.Data[i], want[i])
		}
	}

	if next := p.NextReadable(got); next != nil {
		t.Fatalf("expected nil after draining the only published slot, got %v", next.Data)
	}
}

// TestFillWithoutDrain covers scenario 3: overwrite-newest-on-full.
func TestFillWithoutDrain(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	letters := []uint64{'A', 'B', 'C', 'D', 'E'}
	for i, v := range letters {
		s := p.NextWritable()
		s.Data[0] = v
		if i < 4 {
			if p.WriteIndex() != uint64(i+1) {
				t.Fatalf("write %d: W=%d, want %d", i, p.WriteIndex(), i+1)
			}
		} else {
			if p.WriteIndex() != 4 {
				t.Fatalf("overflow write: W=%d, want unchanged at 4", p.WriteIndex())
			}
			if p.OverflowCount() != 1 {
				t.Fatalf("OverflowCount=%d, want 1", p.OverflowCount())
			}
		}
	}

	var drained []uint64
	var prev *Slot[uint64]
	for {
		s := p.NextReadable(prev)
		if s == nil {
			break
		}
		drained = append(drained, s.Data[0])
		prev = s
	}

	want := []uint64{'A', 'B', 'C', 'E'}
	if len(drained) != len(want) {
		t.Fatalf("drained %v, want %v", drained, want)
	}
	for i := range want {
		if drained[i] != want[i] {
			t.Fatalf("drained %v, want %v", drained, want)
		}
	}
}

// TestDetachedOverflowStaysZero covers the detached boundary behavior:
// arbitrarily many producer writes must succeed with zero overflow because
// the detached sentinel makes the admission check always pass.
func TestDetachedOverflowStaysZero(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10_000; i++ {
		p.NextWritable()
	}
	if p.OverflowCount() != 0 {
		t.Fatalf("detached OverflowCount=%d, want 0", p.OverflowCount())
	}
}

// TestAttachMidStream covers scenario 5.
func TestAttachMidStream(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint64(0); i < 10; i++ {
		s := p.NextWritable()
		s.Data[0] = i
	}

	r, w := p.Attach()
	if w != 10 || r != 9 {
		t.Fatalf("Attach mid-stream: got (%d,%d), want (9,10)", r, w)
	}

	s := p.NextReadable(nil)
	if s == nil || s.Data[0] != 9 {
		t.Fatalf("expected exactly the most recent record (9), got %v", s)
	}
	if s := p.NextReadable(s); s != nil {
		t.Fatalf("expected nil once drained with no further producer activity, got %v", s.Data)
	}
	if p.OverflowCount() != 0 {
		t.Fatalf("OverflowCount=%d, want 0 (detached writes never overflow)", p.OverflowCount())
	}
}

// TestDetachThenAttach covers the detach→attach round trip with no
// intervening producer activity: attach must return (W-1, W).
func TestDetachThenAttach(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()
	for i := uint64(0); i < 3; i++ {
		s := p.NextWritable()
		s.Data[0] = i
	}

	p.Detach()
	r, w := p.Attach()
	if w != 3 || r != 2 {
		t.Fatalf("re-attach: got (%d,%d), want (2,3)", r, w)
	}
}

// TestLockstepNoGaps covers scenario 4: a consumer that keeps up sees every
// sequence number exactly once, in order, with zero overflow.
func TestLockstepNoGaps(t *testing.T) {
	const n = 1_000_000

	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	var prev *Slot[uint64]
	for i := uint64(0); i < n; i++ {
		s := p.NextWritable()
		s.Data[0] = i

		got := p.NextReadable(prev)
		if got == nil {
			t.Fatalf("iteration %d: expected a readable slot, got nil", i)
		}
		if got.Data[0] != i {
			t.Fatalf("iteration %d: got %d, want %d", i, got.Data[0], i)
		}
		prev = got
	}

	if p.OverflowCount() != 0 {
		t.Fatalf("OverflowCount=%d, want 0 for a consumer that keeps up", p.OverflowCount())
	}
}

// TestConcurrentProducerConsumer runs a real producer goroutine and a real
// consumer goroutine against a small pool, verifying every observed record
// is part of a strictly increasing subsequence of the written stream — a
// lagging consumer may drop records but must never see a gap filled with
// the wrong value nor a duplicate.
func TestConcurrentProducerConsumer(t *testing.T) {
	const n = 500_000

	p, err := New[uint64](1, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	var wg sync.WaitGroup
	wg.Add(2)

	producerDone := make(chan struct{})
	go func() {
		defer wg.Done()
		defer close(producerDone)
		for i := uint64(0); i < n; i++ {
			s := p.NextWritable()
			s.Data[0] = i
		}
	}()

	var observed []uint64
	go func() {
		defer wg.Done()
		var prev *Slot[uint64]
		producerFinished := false
		for {
			s := p.NextReadable(prev)
			if s != nil {
				observed = append(observed, s.Data[0])
				prev = s
				continue
			}
			if producerFinished {
				return // nothing left to read and the producer is done
			}
			select {
			case <-producerDone:
				producerFinished = true
			default:
				runtime.Gosched()
			}
		}
	}()

	wg.Wait()

	last := ^uint64(0)
	for _, v := range observed {
		if last != ^uint64(0) && v <= last {
			t.Fatalf("observed sequence not strictly increasing: %d after %d", v, last)
		}
		last = v
	}
	if len(observed) == 0 {
		t.Fatalf("consumer observed nothing")
	}
	if observed[len(observed)-1] != n-1 {
		t.Fatalf("last observed value = %d, want %d", observed[len(observed)-1], n-1)
	}
}

// TestOverflowMonotonic checks the overflow counter only ever increases and
// only increases when the pool was genuinely full on entry.
func TestOverflowMonotonic(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	var last uint64
	for i := 0; i < 1000; i++ {
		wasFull := p.WriteIndex()-p.ReadIndex() == uint64(p.Capacity())
		p.NextWritable()
		now := p.OverflowCount()
		if now < last {
			t.Fatalf("overflow counter decreased: %d -> %d", last, now)
		}
		if now > last && !wasFull {
			t.Fatalf("overflow incremented on a non-full pool at iteration %d", i)
		}
		last = now
	}
}

// checksum is a small deterministic fingerprint over a drained sequence,
// used to compare expected vs. observed streams without a manual
// byte-by-byte loop.
func checksum(vs []uint64) [32]byte {
	h := sha3.New256()
	for _, v := range vs {
		var b [8]byte
		for i := range b {
			b[i] = byte(v >> (8 * i))
		}
		h.Write(b[:])
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// TestChecksumRoundTrip ensures a keep-up consumer's drained stream hashes
// identically to the producer's intended stream.
func TestChecksumRoundTrip(t *testing.T) {
	const n = 10_000

	p, err := New[uint64](1, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Attach()

	want := make([]uint64, n)
	for i := range want {
		want[i] = uint64(i)
	}

	var got []uint64
	var prev *Slot[uint64]
	for _, v := range want {
		s := p.NextWritable()
		s.Data[0] = v
		if r := p.NextReadable(prev); r != nil {
			got = append(got, r.Data[0])
			prev = r
		}
	}

	if checksum(got) != checksum(want) {
		t.Fatalf("checksum mismatch: drained stream does not match written stream")
	}
}

func TestPeekRacyReturnsCurrentWriteSlot(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := p.NextWritable()
	s.Data[0] = 42

	if got := p.PeekRacy(); got.Data[0] != 42 {
		t.Fatalf("PeekRacy: got %d, want 42", got.Data[0])
	}
}

func TestOverflowCountStartsAtZero(t *testing.T) {
	p, err := New[uint64](1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var v atomic.Uint64
	v.Store(p.OverflowCount())
	if v.Load() != 0 {
		t.Fatalf("expected zero overflow at construction")
	}
}
