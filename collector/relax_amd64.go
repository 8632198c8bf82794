// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - AMD64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: x86-64 Spin-Wait Optimization
//
// Description:
//   Platform-specific implementation for x86-64 processors using the PAUSE
//   instruction, hinting the core that the collector's poll loop is
//   spin-waiting so hyperthread siblings and the memory pipeline can back off.
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build amd64 && !noasm && !nocgo

package collector

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// cpuRelax emits the x86-64 PAUSE instruction for efficient spin-wait loops.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	C.cpu_pause()
}
