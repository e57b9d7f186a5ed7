package kernel

import "unsafe"

// Create populates slot id's stack with the initial bootstrap frame,
// clears its disabled and sleeping bits, and sets its suspended bit per
// suspended. If id is the currently running thread, Create does not
// return: it transfers control via the scheduler-without-save flavor of
// the context switch to the next runnable thread, replacing the caller
// (spec.md §4.4).
func (k *Kernel) Create(id ThreadID, entry EntryFunc, suspended bool, arg unsafe.Pointer) {
	k.assertValidID(id)
	k.assertEntry(entry)

	k.slots[id].SleepMillis = 0
	k.disabled.clear(id)
	k.sleeping.clear(id)
	if suspended {
		k.suspended.set(id)
	} else {
		k.suspended.clear(id)
	}

	k.arch.Bootstrap(&k.slots[id], entry, arg)

	if id == k.current {
		k.contextSwitch(false)
	}
}

// Disable sets id's disabled bit. A disabled slot is never selected by
// the scheduler and its stack contents become irrelevant. If id is the
// currently running thread, Disable does not return: it enters the
// scheduler-without-save path (spec.md §4.4).
func (k *Kernel) Disable(id ThreadID) {
	k.assertValidID(id)
	k.disabled.set(id)
	if id == k.current {
		k.contextSwitch(false)
	}
}

// Suspend sets id's suspended bit. A suspended slot will not run until
// Resume clears it. If id is the currently running thread, Suspend yields
// — saving the caller's context so it may later be resumed (spec.md §4.4).
func (k *Kernel) Suspend(id ThreadID) {
	k.assertValidID(id)
	k.suspended.set(id)
	if id == k.current {
		k.contextSwitch(true)
	}
}

// Resume clears id's suspended bit. It has no effect on a disabled slot's
// runnability: the slot remains disabled regardless (spec.md §4.4).
func (k *Kernel) Resume(id ThreadID) {
	k.assertValidID(id)
	k.suspended.clear(id)
}

// Sleep atomically arms the current thread's sleep counter with ms and
// sets its sleeping bit, then yields. It returns once the counter has
// been decremented to zero by the tick ISR and the thread is next
// scheduled (spec.md §4.4). Sleep(0) is a plain Yield: a zero-length sleep
// would otherwise violate I3 (sleeping set implies counter > 0).
func (k *Kernel) Sleep(ms uint16) {
	if ms == 0 {
		k.Yield()
		return
	}

	id := k.current
	k.arch.InterruptsDisabled(func() {
		k.slots[id].SleepMillis = ms
		k.sleeping.set(id)
	})
	k.contextSwitch(true)
}

// SleepLong sleeps for a 32-bit duration by chunking it into 16-bit Sleep
// calls. The chunk durations sum to exactly ms32: no overrun, no underrun
// (spec.md §4.4, §8 "Chunking").
func (k *Kernel) SleepLong(ms32 uint32) {
	for ms32 > 0 {
		chunk := ms32
		if chunk > 0xFFFF {
			chunk = 0xFFFF
		}
		k.Sleep(uint16(chunk))
		ms32 -= chunk
	}
}

// Millis returns an atomic snapshot of the 32-bit system millisecond
// counter (spec.md §4.4).
func (k *Kernel) Millis() uint32 {
	var v uint32
	k.arch.InterruptsDisabled(func() {
		v = k.millis
	})
	return v
}

// ThreadEnabled reports whether id's disabled bit is clear.
func (k *Kernel) ThreadEnabled(id ThreadID) bool {
	k.assertValidID(id)
	return !k.disabled.has(id)
}

// ThreadSuspended reports whether id is enabled and its suspended bit is
// set. disabled dominates: a disabled slot is never reported suspended
// even if its suspended bit happens to be set (spec.md §3 invariant).
func (k *Kernel) ThreadSuspended(id ThreadID) bool {
	k.assertValidID(id)
	return !k.disabled.has(id) && k.suspended.has(id)
}

// ThreadSleeping reports whether id is enabled and its sleeping bit is
// set, with the same disabled-dominates rule as ThreadSuspended.
func (k *Kernel) ThreadSleeping(id ThreadID) bool {
	k.assertValidID(id)
	return !k.disabled.has(id) && k.sleeping.has(id)
}

// Current returns the currently running thread's id.
func (k *Kernel) Current() ThreadID {
	return k.current
}

// Yield is the cooperative yield of spec.md §4.3: the caller's context is
// saved so the scheduler can resume it later, and the next runnable
// thread (round-robin from current+1) is given the CPU.
func (k *Kernel) Yield() {
	k.contextSwitch(true)
}
