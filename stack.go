package kernel

import "encoding/binary"

// Sizes, in bytes, of the bootstrap frame's fixed fields (spec.md §4.2):
// a two-byte entry-point address, a two-byte argument pointer, a one-byte
// thread id, and a two-byte trampoline address.
const (
	frameEntrySize      = 2
	frameArgSize        = 2
	frameIDSize         = 1
	frameTrampolineSize = 2
	frameFixedSize      = frameEntrySize + frameArgSize + frameIDSize + frameTrampolineSize
)

// bootstrapFrameSize returns INITIAL_STACK_USAGE for a backend whose
// Switch restores regPadding bytes of callee-saved registers: the fixed
// frame fields plus that padding (spec.md §4.2, §9 — "treat them as
// generated constants, not magic numbers").
func bootstrapFrameSize(regPadding int) int {
	return frameFixedSize + regPadding
}

// writeBootstrapFrame lays out the initial stack frame described in
// spec.md §4.2 at the top of mem, which represents the bytes immediately
// below a slot's stack base (mem[len(mem)-1] is base-1). The register
// padding is left untouched (its contents are irrelevant until Switch
// pops them). It returns the new saved stack pointer as an offset below
// base, i.e. the caller should set Slot.SP = Slot.StackBase - usage.
func writeBootstrapFrame(mem []byte, regPadding int, entry, trampoline uint16, arg uint16, id ThreadID) int {
	usage := bootstrapFrameSize(regPadding)
	if usage > len(mem) {
		panic("kernel: stack region too small for bootstrap frame")
	}

	be := binary.BigEndian
	top := len(mem)
	off := top - frameFixedSize

	be.PutUint16(mem[off:], trampoline)
	off += frameTrampolineSize
	mem[off] = byte(id)
	off += frameIDSize
	be.PutUint16(mem[off:], arg)
	off += frameArgSize
	be.PutUint16(mem[off:], entry)

	return usage
}

// readBootstrapFrame recovers the fields a bootstrap trampoline would read
// off the stack positions writeBootstrapFrame wrote: the entry address,
// the argument pointer, the thread id, and the trampoline address itself.
// Used by tests to check the layout writeBootstrapFrame produces; neither
// backend calls it (the AVR trampoline in switch_avr.s pops the same
// positions itself, and SimArch calls entry(arg) directly).
func readBootstrapFrame(mem []byte) (entry, arg uint16, id ThreadID, trampoline uint16) {
	be := binary.BigEndian
	top := len(mem)
	off := top - frameFixedSize

	trampoline = be.Uint16(mem[off:])
	off += frameTrampolineSize
	id = ThreadID(mem[off])
	off += frameIDSize
	arg = be.Uint16(mem[off:])
	off += frameArgSize
	entry = be.Uint16(mem[off:])

	return entry, arg, id, trampoline
}
