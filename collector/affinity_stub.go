// affinity_stub.go — no-op CPU affinity for platforms without
// sched_setaffinity(2) (macOS, Windows, BSD, TinyGo). Keeps the same API so
// collector.Run needs no build-tag branching of its own.

//go:build !linux || tinygo

package collector

//go:nosplit
//go:inline
func setAffinity(cpu int) {
	// No-op: pinning is unsupported here, and it's only a performance hint.
}
