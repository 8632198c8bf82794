// runtimetune.go — GC-disable/heap-watermark pattern mirroring this
// codebase's production event loop: GC stays off for deterministic
// collector latency, and a background watcher trims the heap only when a
// soft limit is crossed, panicking on a hard limit as a leak backstop.

package main

import (
	"runtime"
	rtdebug "runtime/debug"
	"sync"
	"time"

	"samplepool/diag"
)

const (
	heapSoftLimit = 256 << 20 // trim the heap once resident memory crosses this
	heapHardLimit = 1 << 30   // a leak is the only way this should ever be hit
)

// runHeapGuard disables GC for steady-state operation and periodically
// checks heap growth, re-enabling GC for a single cycle when heapSoftLimit
// is crossed. It returns once stopFlag is raised.
func runHeapGuard(wg *sync.WaitGroup, stopFlag *uint32) {
	defer wg.Done()

	rtdebug.SetGCPercent(-1)

	var memstats runtime.MemStats
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if *stopFlag != 0 {
			return
		}
		<-ticker.C

		runtime.ReadMemStats(&memstats)
		if memstats.HeapAlloc > heapSoftLimit {
			rtdebug.SetGCPercent(100)
			runtime.GC()
			rtdebug.SetGCPercent(-1)
			diag.DropMessage("GC", "heap trimmed")
		}
		if memstats.HeapAlloc > heapHardLimit {
			panic("heap usage exceeded hard cap — leak likely")
		}
	}
}
