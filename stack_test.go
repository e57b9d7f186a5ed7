package kernel

import (
	"testing"
	"unsafe"
)

func TestWriteReadBootstrapFrameRoundTrip(t *testing.T) {
	mem := make([]byte, 32)
	const regPadding = 8

	usage := writeBootstrapFrame(mem, regPadding, 0xBEEF, 0xCAFE, 0x1234, 5)
	if want := bootstrapFrameSize(regPadding); usage != want {
		t.Fatalf("writeBootstrapFrame usage = %d, want %d", usage, want)
	}

	entry, arg, id, trampoline := readBootstrapFrame(mem)
	if entry != 0xBEEF {
		t.Errorf("entry = %#04x, want 0xBEEF", entry)
	}
	if arg != 0x1234 {
		t.Errorf("arg = %#04x, want 0x1234", arg)
	}
	if id != 5 {
		t.Errorf("id = %d, want 5", id)
	}
	if trampoline != 0xCAFE {
		t.Errorf("trampoline = %#04x, want 0xCAFE", trampoline)
	}
}

func TestWriteBootstrapFramePanicsOnTooSmallStack(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic writing bootstrap frame into too-small stack")
		}
	}()
	mem := make([]byte, 2)
	writeBootstrapFrame(mem, 8, 1, 2, 3, 0)
}

// TestCreateLeavesSPInInitialFrameRange asserts I5's stack-pointer clause:
// Create leaves a freshly created slot's saved stack pointer in
// [base-INITIAL_STACK_USAGE, base).
func TestCreateLeavesSPInInitialFrameRange(t *testing.T) {
	k, _ := newTestKernel(2)

	k.Create(1, func(arg unsafe.Pointer) { select {} }, true, nil)

	slot := k.slots[1]
	usage := bootstrapFrameSize(simFrameLayout)
	lo := slot.StackBase - uintptr(usage)
	if slot.SP < lo || slot.SP >= slot.StackBase {
		t.Fatalf("SP = %#x, want in [%#x, %#x)", slot.SP, lo, slot.StackBase)
	}
	if k.disabled.has(1) {
		t.Errorf("slot 1 still disabled after Create")
	}
	if k.sleeping.has(1) {
		t.Errorf("slot 1 sleeping after Create")
	}
	if !k.suspended.has(1) {
		t.Errorf("slot 1 not suspended after Create(suspended=true)")
	}
	if slot.SleepMillis != 0 {
		t.Errorf("SleepMillis = %d, want 0", slot.SleepMillis)
	}
}
