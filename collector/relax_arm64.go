// ════════════════════════════════════════════════════════════════════════════════════════════════
// CPU Relaxation - ARM64 Architecture
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Low-Overhead Profiling / Telemetry Sample Collection
// Component: ARM64 Spin-Wait Optimization
//
// Description:
//   Platform-specific implementation for ARM64 processors using the YIELD
//   instruction during the collector's busy-wait backoff.
// ════════════════════════════════════════════════════════════════════════════════════════════════

//go:build arm64 && !noasm && !nocgo

package collector

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// cpuRelax emits the ARM64 YIELD instruction for efficient spin-wait loops.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	C.cpu_yield()
}
