// relax_stub.go — fallback no-op cpuRelax for platforms without a dedicated
// spin-wait hint instruction, or with cgo/asm disabled.
//
//go:build (!amd64 && !arm64) || noasm || nocgo || !cgo

package collector

//go:nosplit
//go:inline
func cpuRelax() {
	// No-op: the compiler eliminates this entirely when inlined.
}
