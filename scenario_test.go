package kernel

import (
	"testing"
	"time"
	"unsafe"
)

// TestAllBlockedIdlesUntilTick is end-to-end scenario 5 of spec.md §8: with
// slot 1 disabled (never Created) and slot 0 the only enabled slot, a sleep
// on slot 0 makes every slot blocked at once, so the scheduler must idle
// across tick boundaries (Arch.IdleUntilTick) rather than spin, and must
// land back on slot 0 the instant its sleep bit clears.
func TestAllBlockedIdlesUntilTick(t *testing.T) {
	k, arch := newTestKernel(2)

	go func() {
		for i := 0; i < 5; i++ {
			time.Sleep(time.Millisecond)
			arch.Tock()
		}
	}()

	before := k.Millis()
	k.Sleep(5) // blocks this goroutine inside pickNext's idle loop until woken
	after := k.Millis()

	if after < before+5 {
		t.Fatalf("Millis() advanced by %d, want at least 5", after-before)
	}
	if k.Current() != 0 {
		t.Fatalf("Current() = %d, want 0 (the only enabled slot)", k.Current())
	}
	if k.ThreadSleeping(0) {
		t.Fatalf("slot 0 should no longer report sleeping once woken")
	}
}

// TestSuspendIdempotent covers the Idempotence law: suspend(id); suspend(id)
// is equivalent to a single suspend(id).
func TestSuspendIdempotent(t *testing.T) {
	k, _ := newTestKernel(2)
	k.Create(1, func(arg unsafe.Pointer) { select {} }, false, unsafe.Pointer(k))

	k.Suspend(1)
	once := k.Snapshot()
	k.Suspend(1)
	twice := k.Snapshot()

	if once != twice {
		t.Fatalf("suspend(id) twice differs from once:\n %+v\n %+v", once, twice)
	}
}

// TestDisableIdempotent covers the Idempotence law: disable(id); disable(id)
// is equivalent to a single disable(id).
func TestDisableIdempotent(t *testing.T) {
	k, _ := newTestKernel(2)
	k.Create(1, func(arg unsafe.Pointer) { select {} }, false, unsafe.Pointer(k))

	k.Disable(1)
	once := k.Snapshot()
	k.Disable(1)
	twice := k.Snapshot()

	if once != twice {
		t.Fatalf("disable(id) twice differs from once:\n %+v\n %+v", once, twice)
	}
}

// TestRoundRobinFairnessWithinNYields covers I6: if slot j is continuously
// runnable and nothing else self-blocks, it must run within N yields of the
// current thread.
func TestRoundRobinFairnessWithinNYields(t *testing.T) {
	const n = 4
	k, _ := newTestKernel(n)

	var log []ThreadID
	for i := ThreadID(1); i < n; i++ {
		k.Create(i, yieldLoopEntry(i, &log), false, unsafe.Pointer(k))
	}

	ran := make([]bool, n)
	ran[0] = true
	for i := 0; i < n; i++ {
		log = append(log, 0)
		k.Yield()
		for _, id := range log {
			ran[id] = true
		}
	}

	for id, seen := range ran {
		if !seen {
			t.Fatalf("slot %d never ran within %d yields", id, n)
		}
	}
}
