// ════════════════════════════════════════════════════════════════════════════════════════════════
// Sample Collector - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: Demo Entry Point & System Orchestration
//
// Description:
//   Phased orchestration mirroring this codebase's production entry point:
//   Bootstrap → Memory Optimization → Production Capture/Collection.
//
// Architecture:
//   - Phase 1: Load configuration and construct the pool
//   - Phase 2: Memory cleanup before entering the steady-state loop
//   - Phase 3: Producer + collector + diagnostics running concurrently
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"samplepool/collector"
	"samplepool/diag"
	"samplepool/pool"
	"samplepool/record"
	"samplepool/unwind"
	"samplepool/worker"
)

func main() {
	configPath := flag.String("config", "samplecollector.json", "path to JSON config file")
	flag.Parse()

	// PHASE 1: Bootstrap
	diag.DropMessage("INIT", "Loading configuration")

	cfg, err := loadConfig(*configPath)
	if err != nil {
		diag.DropError("load config", err)
		os.Exit(1)
	}
	diag.DropMessage("LOADED", "slots="+itoa(cfg.SlotCount)+" slotLen="+itoa(cfg.SlotLen))

	p, err := pool.New[record.CallInfo](cfg.SlotLen, cfg.SlotCount)
	if err != nil {
		diag.DropError("construct pool", err)
		os.Exit(1)
	}

	store, err := diag.OpenStore(cfg.DiagDBPath)
	if err != nil {
		diag.DropError("open diagnostics store", err)
		os.Exit(1)
	}

	flushQueue, err := worker.NewQueue[record.CallInfo](cfg.FlushQueueCapacity)
	if err != nil {
		diag.DropError("construct flush queue", err)
		os.Exit(1)
	}

	diag.DropMessage("READY", "System initialized")

	var stop uint32

	var shutdownWG sync.WaitGroup
	setupSignalHandling(&stop, store)

	// PHASE 2: Memory optimization for deterministic steady-state behavior
	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()

	// PHASE 3: Producer, collector, flush worker, and diagnostics, all running
	shutdownWG.Add(1)
	go runProducer(&shutdownWG, p, cfg, &stop)

	shutdownWG.Add(1)
	go runCollector(&shutdownWG, p, cfg, &stop, flushQueue)

	shutdownWG.Add(1)
	go runFlushWorker(&shutdownWG, flushQueue, store, &stop)

	shutdownWG.Add(1)
	go runDiagnostics(&shutdownWG, p, store, cfg, &stop)

	shutdownWG.Add(1)
	go runHeapGuard(&shutdownWG, &stop)

	shutdownWG.Wait()
	diag.DropMessage("SHUTDOWN", "all subsystems stopped")
}

// runProducer captures synthetic samples at a fixed cadence until stopFlag
// is raised. A real producer would call unwind.Capture from the code path
// it wants to profile; this one calls it from its own loop to exercise the
// whole pipeline end to end.
func runProducer(wg *sync.WaitGroup, p *pool.Pool[record.CallInfo], cfg Config, stopFlag *uint32) {
	defer wg.Done()

	interval := time.Duration(cfg.ProducerIntervalMicros) * time.Microsecond
	for {
		if *stopFlag != 0 {
			return
		}

		slot := p.NextWritable()
		for i := range slot.Data {
			unwind.Capture(&slot.Data[i], 1)
			time.Sleep(interval)
		}
	}
}

// runCollector drains the pool, handing each slot's records off to
// flushQueue so a slow sink never blocks the drain loop. When the queue is
// full, the remaining records of that slot are dropped.
func runCollector(wg *sync.WaitGroup, p *pool.Pool[record.CallInfo], cfg Config, stopFlag *uint32, flushQueue *worker.Queue[record.CallInfo]) {
	defer wg.Done()

	opts := collector.Options{
		Core: cfg.CollectorCore,
		Stop: stopFlag,
	}
	collector.Run(p, opts, func(s *pool.Slot[record.CallInfo]) {
		for _, rec := range s.Data {
			if !flushQueue.Submit(rec) {
				diag.DropMessage("FLUSH_FULL", "dropping record: flush queue saturated")
				return
			}
		}
	})
}

// runFlushWorker drains flushQueue until stopFlag is raised and the queue
// has been fully emptied, then closes the diagnostics store. The demo sink
// discards each record; nothing is written to the store here.
func runFlushWorker(wg *sync.WaitGroup, flushQueue *worker.Queue[record.CallInfo], store *diag.Store, stopFlag *uint32) {
	defer wg.Done()
	defer store.Close()

	worker.Drain(flushQueue, stopFlag, func(rec record.CallInfo) {
		_ = rec // the demo sink discards rec; a real sink would persist it
	})
}

// runDiagnostics periodically snapshots pool health into store until
// stopFlag is raised.
func runDiagnostics(wg *sync.WaitGroup, p *pool.Pool[record.CallInfo], store *diag.Store, cfg Config, stopFlag *uint32) {
	defer wg.Done()

	diag.Poll(p, diag.PollerOptions{
		Interval: time.Duration(cfg.DiagIntervalMs) * time.Millisecond,
		Store:    store,
		Stop:     stopFlag,
	})
}

// setupSignalHandling configures graceful shutdown coordination, mirroring
// this codebase's production entry point.
func setupSignalHandling(stop *uint32, store *diag.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		diag.DropMessage("SIGNAL", "received interrupt, shutting down...")
		atomic.StoreUint32(stop, 1)
	}()
}

// itoa avoids pulling in strconv for a handful of log lines, matching how
// this codebase's debug logging keeps its own formatting helpers nearby.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
