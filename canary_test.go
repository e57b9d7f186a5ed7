package kernel

import (
	"testing"
	"unsafe"
)

func TestThreadCanaryOK(t *testing.T) {
	cfg := Config{Threads: 2, Canary: true, Debug: true}
	for i := 0; i < cfg.Threads; i++ {
		cfg.Stacks[i] = StackRegion{Base: uintptr(0x2000 + i*0x100), Size: 0x80}
	}
	arch := NewSimArch(true)
	k := New(cfg, arch)
	k.Init()

	if !k.ThreadCanaryOK(0) {
		t.Fatalf("slot 0's canary should read intact right after Init")
	}

	k.Create(1, func(arg unsafe.Pointer) { select {} }, true, unsafe.Pointer(k))
	if !k.ThreadCanaryOK(1) {
		t.Fatalf("slot 1's canary should survive Create — Bootstrap must not overwrite it")
	}

	arch.mem[1][0] ^= 0xFF // corrupt the sentinel byte directly
	if k.ThreadCanaryOK(1) {
		t.Fatalf("ThreadCanaryOK should report false once the canary byte is corrupted")
	}
	if k.ThreadCanaryOK(0) == false {
		t.Fatalf("corrupting slot 1's canary must not affect slot 0's")
	}
}

func TestThreadCanaryOKWithoutCanaryConfigured(t *testing.T) {
	k, arch := newTestKernel(1)

	// Canary defaults to false in newTestKernel's Config; an unchecked
	// stack can never be reported corrupted (spec.md §7).
	if !k.ThreadCanaryOK(0) {
		t.Fatalf("ThreadCanaryOK must be true when Config.Canary is false")
	}
	if len(arch.mem[0]) != 0 {
		t.Fatalf("no simulated stack memory should be allocated when canaries are off")
	}
}
