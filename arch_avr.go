//go:build avr

package kernel

import (
	"device/avr"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// avrRegPadding is INITIAL_STACK_USAGE's register contribution: the
// callee-saved general-purpose registers (r2-r17, r28, r29) plus SREG
// that switchContext (switch_avr.s) pushes and pops, per the avr-gcc
// calling convention. Treat this as a generated constant (spec.md §9),
// not a magic number — it must track switch_avr.s exactly.
const avrRegPadding = 19

// cpuHz is the CPU clock, in Hz, that ArmTick derives Timer0's 1 ms
// compare value from. It is not compared against the clock the board
// actually runs at, at build time or at run time; the only compile-time
// check is that the derived compare value fits OCR0A's 8 bits (the
// uint8 constant conversion in ArmTick does not compile otherwise).
const cpuHz = 16_000_000

// avrArch is the real AVR8 backend: Arch implemented against Timer0 in
// CTC mode for the tick, and a hand-written register save/restore
// sequence (switch_avr.s) for the context switch itself — exactly the
// out-of-scope collaborator spec.md §1 calls "a contract, not an
// instruction listing".
type avrArch struct {
	onTick func()
}

// NewAVRArch returns the real-hardware Arch backend. It does not itself
// touch any peripheral; that happens in Kernel.Init via ArmTick and
// EnableTickInterrupt.
func NewAVRArch() *avrArch {
	return &avrArch{}
}

// switchContext is implemented in switch_avr.s. It pushes the caller's
// callee-saved registers (when save != 0), stores the resulting stack
// pointer into *fromSP, loads toSP into the hardware stack pointer, pops
// registers, and returns — which lands either at the instruction after
// the original call (a previously-yielded thread) or at bootstrapTrampoline
// (a freshly created one), per spec.md §4.2-§4.3.
//
//go:noescape
func switchContext(fromSP *uintptr, toSP uintptr, save bool)

// bootstrapTrampoline is implemented in switch_avr.s. It recovers the
// argument pointer and thread id from the fixed stack offsets
// writeBootstrapFrame wrote and jumps to the entry point, per spec.md
// §4.2(a-c).
//
//go:noescape
func bootstrapTrampoline()

// idleSleep is implemented in switch_avr.s: it issues SLEEP with global
// interrupts enabled, returning once any interrupt (here, only the tick)
// wakes the core.
//
//go:noescape
func idleSleep()

func (a *avrArch) Bootstrap(slot *Slot, entry EntryFunc, arg unsafe.Pointer) {
	mem := unsafe.Slice((*byte)(unsafe.Pointer(slot.StackBase-slot.StackSize)), slot.StackSize)
	entryAddr := uint16(uintptr(unsafe.Pointer(&entry)))
	argAddr := uint16(uintptr(arg))
	trampolineAddr := uint16(uintptr(unsafe.Pointer(&bootstrapTrampoline)))

	usage := writeBootstrapFrame(mem, avrRegPadding, entryAddr, trampolineAddr, argAddr, slot.ID)
	slot.SP = slot.StackBase - uintptr(usage)
}

func (a *avrArch) Switch(from, to *Slot, save bool) {
	switchContext(&from.SP, to.SP, save)
}

func (a *avrArch) ArmTick(onTick func()) {
	a.onTick = onTick
	activeTick = onTick
	// Timer0, CTC mode, prescaler and OCR0A chosen for a 1ms period at
	// cpuHz. Nothing here checks cpuHz against the fuse-configured clock;
	// uint8(ocr) only rejects, at compile time, a compare value above 255.
	const prescaler = 64
	const ocr = cpuHz/prescaler/1000 - 1
	avr.TCCR0A.Set(avr.TCCR0A_WGM01)
	avr.TCCR0B.Set(avr.TCCR0B_CS01 | avr.TCCR0B_CS00)
	avr.OCR0A.Set(uint8(ocr))
}

func (a *avrArch) EnableTickInterrupt() {
	avr.TIMSK0.Set(avr.TIMSK0_OCIE0A)
}

func (a *avrArch) IdleUntilTick() {
	mask := interrupt.Disable()
	idleSleep()
	interrupt.Restore(mask)
}

func (a *avrArch) NotifyTick() {
	// Real hardware wakes the core as part of delivering the interrupt
	// that calls Tick; nothing further to signal.
}

func (a *avrArch) InterruptsDisabled(fn func()) {
	mask := interrupt.Disable()
	defer interrupt.Restore(mask)
	fn()
}

func (a *avrArch) WriteCanary(slot *Slot) {
	reg := (*volatile.Register8)(unsafe.Pointer(slot.CanaryAddr))
	reg.Set(slot.CanarySentinel)
}

func (a *avrArch) CheckCanary(slot *Slot) bool {
	reg := (*volatile.Register8)(unsafe.Pointer(slot.CanaryAddr))
	return reg.Get() == slot.CanarySentinel
}

// timer0CompareA is the ISR vector for Timer0 Compare Match A, registered
// at package init. It calls back into whatever Kernel armed the tick —
// there is exactly one per spec.md §9's single-init design, so a package
// global is the only plausible place to keep the pointer.
var activeTick func()

func init() {
	interrupt.New(avr.IRQ_TIMER0_COMPA, func(interrupt.Interrupt) {
		if activeTick != nil {
			activeTick()
		}
	}).Enable()
}

var _ Arch = (*avrArch)(nil)
var _ CanaryArch = (*avrArch)(nil)
