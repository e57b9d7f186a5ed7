package kernel

import "unsafe"

// ThreadID is a slot index in [0, MaxSlots).
type ThreadID uint8

// EntryFunc is a thread entry point. arg is the opaque pointer passed to
// Create; it is recovered by the bootstrap trampoline on first resumption.
// An entry point must not return (spec: behavior is unspecified if it does;
// the Arch implementations in this repo do not disable the slot when one
// does — SimArch only ends the slot's goroutine, see SimArch.Bootstrap).
type EntryFunc func(arg unsafe.Pointer)

// Slot is the per-thread data an Arch implementation manipulates directly:
// its saved stack pointer, its stack region, its sleep counter, and its
// optional canary. Kernel owns the array of these; Arch never allocates
// or frees one, mirroring the teacher's CPU/Bus split where Bus never
// owns CPU registers, only the memory behind them.
type Slot struct {
	ID          ThreadID
	SP          uintptr // saved stack pointer; opaque outside Arch
	StackBase   uintptr
	StackSize   uintptr
	SleepMillis uint16 // remaining sleep duration; Kernel-owned, Arch never writes it

	CanaryAddr     uintptr
	CanarySentinel byte
}

// Arch is the hardware-abstraction boundary this core pushes every
// out-of-scope collaborator behind: register save/restore across a
// context switch, the bootstrap trampoline, the 1 ms hardware timer, and
// the interrupt-mask discipline spec.md §5 requires around shared state.
// It plays exactly the role the teacher's Bus interface plays for CPU:
// the core above never reaches past it to touch real silicon.
type Arch interface {
	// Bootstrap populates slot's stack with the initial bootstrap frame
	// (spec.md §4.2) so that a later Switch into slot behaves exactly
	// like resuming a thread that had previously yielded. It must set
	// slot.SP to base - INITIAL_STACK_USAGE.
	Bootstrap(slot *Slot, entry EntryFunc, arg unsafe.Pointer)

	// Switch is the single context-switch primitive behind both flavors
	// described in spec.md §4.3. When save is true, it saves the caller's
	// (from's) register state onto from's own stack and records the
	// resulting stack pointer in from.SP before loading to's saved stack
	// pointer and resuming it ("cooperative yield"). When save is false,
	// the caller's context is abandoned outright and never resumed
	// ("scheduler-without-save"); Switch does not return to its caller in
	// that case. Interrupt-enable state is left as the caller had it.
	Switch(from, to *Slot, save bool)

	// ArmTick registers onTick to be invoked once per millisecond once
	// EnableTickInterrupt is called. onTick must be Kernel.Tick.
	ArmTick(onTick func())

	// EnableTickInterrupt starts delivering the armed tick. Global
	// interrupts otherwise remain exactly as Init left them (masked).
	EnableTickInterrupt()

	// IdleUntilTick blocks, in a low-power wait on real hardware, until
	// at least one tick has been delivered since entry. It must leave
	// interrupts enabled for the duration of the wait regardless of the
	// caller's interrupt state, per spec.md §4.3's idle-loop rule, and
	// restore the caller's interrupt state before returning.
	IdleUntilTick()

	// NotifyTick is called by Kernel.Tick after it finishes mutating
	// state, to release anything parked in IdleUntilTick. On real
	// hardware this is a no-op: the interrupt return itself wakes the
	// core. In simulation it signals the idle waiter directly.
	NotifyTick()

	// InterruptsDisabled runs fn with the interrupt-mask discipline
	// spec.md §5 requires for coherent access to sleeping, the sleep
	// counters, and the millisecond counter from outside the tick ISR.
	// On real hardware this is cli/sei around fn; in simulation it is a
	// mutex, since goroutines are real concurrency where hardware
	// interrupts are not.
	InterruptsDisabled(fn func())
}

// CanaryArch is optionally implemented by an Arch that supports writing
// and checking a stack canary, mirroring CycleBus's optional extension of
// Bus in the teacher. Kernel type-asserts for it exactly the way CPU.New
// type-asserts bus for CycleBus.
type CanaryArch interface {
	Arch
	WriteCanary(slot *Slot)
	CheckCanary(slot *Slot) bool
}
