package kernel

import (
	"runtime"
	"sync"
	"time"
	"unsafe"
)

// simFrameLayout is the register-padding SimArch reserves in its
// simulated stack buffers. It has no real registers to save — the
// goroutine scheduler underneath already preserves Go's call stack — but
// it keeps writeBootstrapFrame exercised the way a real backend would
// exercise it, so I5 and the bootstrap-frame
// layout are covered by the same test surface regardless of backend.
const simFrameLayout = 8

// defaultSimStackSize is used for a slot whose Config.Stacks entry leaves
// Size at zero: SimArch does not need real addressable memory, only
// enough to host the bootstrap frame it writes for parity.
const defaultSimStackSize = 64

// SimArch is the goroutine-based Arch used for host tests and as a
// portable simulation backend. No pack example runs a goroutine-based
// cooperative scheduler as a stand-in for real hardware, so this one has
// no direct precedent to imitate; it is built directly against what
// go test needs: channels stand in for the stack-switch primitive, and a
// simulated or real-time clock stands in for the hardware timer, so the
// scheduler policy, bitset accounting, and tick math this spec is
// actually about can be exercised without any target hardware or
// cross-compiler.
//
// Exactly one goroutine runs "thread" code at a time: Switch only ever
// releases one slot's channel before blocking (or exiting) the caller, so
// disabled/suspended — which spec.md says the tick source never touches —
// are genuinely never written by two goroutines at once, matching the
// real kernel's single-CPU guarantee. sleeping, the sleep counters, and
// the millisecond counter are the only state the simulated tick goroutine
// touches concurrently with thread code, so those go through mu via
// InterruptsDisabled, standing in for cli/sei.
type SimArch struct {
	mu sync.Mutex

	resume [MaxSlots]chan struct{}
	mem    [MaxSlots][]byte

	onTick func()
	tickCh chan struct{}

	manual   bool
	stopAuto chan struct{}
}

// NewSimArch constructs a SimArch. When manual is true, ticks are
// delivered only by explicit calls to Tock, for deterministic tests; when
// false, EnableTickInterrupt starts a real-time goroutine delivering one
// tick per millisecond of wall-clock time.
func NewSimArch(manual bool) *SimArch {
	a := &SimArch{
		tickCh: make(chan struct{}, 1),
		manual: manual,
	}
	for i := range a.resume {
		a.resume[i] = make(chan struct{})
	}
	return a
}

// Bootstrap starts slot's goroutine parked on its resume channel, and
// separately writes a simulated bootstrap frame for parity with a real
// backend (see simFrameLayout). The goroutine calls entry(arg) the first
// time it is released. spec.md §4.2 leaves behavior on return unspecified
// and only allows disabling the slot as an optional hardening measure;
// this backend does not take that option (it has no path back to Kernel
// from here) and simply exits the goroutine via runtime.Goexit so a
// returning entry point never falls back into some other thread's Switch
// call.
func (a *SimArch) Bootstrap(slot *Slot, entry EntryFunc, arg unsafe.Pointer) {
	mem := a.memFor(slot)
	usage := writeBootstrapFrame(mem, simFrameLayout, 0, 0, 0, slot.ID)
	slot.SP = slot.StackBase - uintptr(usage)

	ch := make(chan struct{})
	a.resume[slot.ID] = ch

	go func() {
		<-ch
		entry(arg)
		runtime.Goexit()
	}()
}

// Switch hands control from one simulated thread goroutine to another.
// When save is true it blocks the caller on its own resume channel,
// exactly the parked state Bootstrap leaves a freshly created thread in,
// so the next Switch that targets it resumes it the same way either way.
// When save is false the caller must never run again; runtime.Goexit
// terminates it without returning to whatever called Disable/Suspend(self)
// /Create(self), honoring the "does not return" contract without leaking
// a goroutine blocked forever.
func (a *SimArch) Switch(from, to *Slot, save bool) {
	if from.ID == to.ID && save {
		// The scheduler re-selected the caller itself as a plain yield
		// target (it is the only runnable slot, and no replacement was
		// just Bootstrapped into it). On real hardware this saves and
		// immediately reloads the same stack pointer — a no-op. Here it
		// must be one too: a goroutine cannot rendezvous on its own
		// unbuffered channel without deadlocking. This shortcut must not
		// be taken when save is false: Create(self) replaces from.ID's
		// channel and goroutine via Bootstrap moments earlier, and that
		// fresh goroutine still needs the send below to ever run.
		return
	}

	a.resume[to.ID] <- struct{}{}

	if !save {
		runtime.Goexit()
	}

	mine := a.resume[from.ID]
	<-mine
}

// ArmTick records onTick, to be invoked once per simulated millisecond
// once EnableTickInterrupt is called.
func (a *SimArch) ArmTick(onTick func()) {
	a.onTick = onTick
}

// EnableTickInterrupt starts delivering ticks. In manual mode it does
// nothing further; callers drive time with Tock.
func (a *SimArch) EnableTickInterrupt() {
	if a.manual {
		return
	}
	a.stopAuto = make(chan struct{})
	go a.autoTick(a.stopAuto)
}

func (a *SimArch) autoTick(stop chan struct{}) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			a.onTick()
		}
	}
}

// Tock manually delivers one simulated millisecond tick. Valid only in
// manual mode; used by tests that need deterministic timing instead of
// real-time delivery.
func (a *SimArch) Tock() {
	a.onTick()
}

// IdleUntilTick blocks until at least one tick has been delivered since
// entry.
func (a *SimArch) IdleUntilTick() {
	<-a.tickCh
}

// NotifyTick releases one IdleUntilTick waiter, non-blocking so a tick
// delivered while nothing is idling is not lost but also does not queue
// up more than one pending wakeup.
func (a *SimArch) NotifyTick() {
	select {
	case a.tickCh <- struct{}{}:
	default:
	}
}

// InterruptsDisabled takes mu for the duration of fn, standing in for the
// cli/sei pair a real backend would use.
func (a *SimArch) InterruptsDisabled(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

// memFor returns slot's simulated stack buffer, allocating it on first use.
// Init writes a slot's canary before that slot has necessarily ever been
// Bootstrapped, so allocation cannot wait for Bootstrap the way it used to:
// both paths now go through memFor and share the same buffer, so a canary
// Init wrote survives a later Create the way it would on real hardware
// (the canary lives at a fixed address Bootstrap's frame write never
// touches).
func (a *SimArch) memFor(slot *Slot) []byte {
	mem := a.mem[slot.ID]
	if mem == nil {
		size := int(slot.StackSize)
		if size == 0 {
			size = defaultSimStackSize
		}
		mem = make([]byte, size)
		a.mem[slot.ID] = mem
	}
	return mem
}

// WriteCanary writes the sentinel byte to slot's simulated stack memory
// at its canary offset (the deepest byte of the region), implementing
// CanaryArch.
func (a *SimArch) WriteCanary(slot *Slot) {
	mem := a.memFor(slot)
	mem[0] = slot.CanarySentinel
}

// CheckCanary reports whether slot's simulated canary byte still holds
// its sentinel.
func (a *SimArch) CheckCanary(slot *Slot) bool {
	mem := a.memFor(slot)
	return mem[0] == slot.CanarySentinel
}

var _ Arch = (*SimArch)(nil)
var _ CanaryArch = (*SimArch)(nil)
