package kernel

import "unsafe"

// newTestKernel builds a Kernel over a manual-tick SimArch with n
// threads, plausible per-slot stack regions, and debug assertions on —
// the shared fixture every test in this package starts from, the same
// role the teacher's testBus/newNOPCPU play for cpu_test.go.
func newTestKernel(n int) (*Kernel, *SimArch) {
	cfg := Config{Threads: n, Debug: true}
	for i := 0; i < n; i++ {
		base := uintptr(0x1000 + i*0x100)
		cfg.Stacks[i] = StackRegion{Base: base, Size: 0x80}
	}
	arch := NewSimArch(true)
	k := New(cfg, arch)
	k.Init()
	return k, arch
}

// yieldLoopEntry returns an EntryFunc that, each time it runs, appends its
// own id to log (guarded by a channel-free shared slice — safe because
// the cooperative invariant guarantees only one thread runs at a time)
// and yields, forever. It never returns, honoring spec.md §4.2.
func yieldLoopEntry(id ThreadID, log *[]ThreadID) EntryFunc {
	return func(arg unsafe.Pointer) {
		k := (*Kernel)(arg)
		for {
			*log = append(*log, id)
			k.Yield()
		}
	}
}
