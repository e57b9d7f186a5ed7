package kernel

// selectNext implements the round-robin rule of spec.md §4.3: starting at
// (from+1) mod n, scan successive slot ids and return the first whose bit
// is clear in blocked. The scan covers n candidates, so it also considers
// from itself last — the case where from is the only slot that could
// still be runnable after it just blocked itself is handled the same way
// as every other candidate, not as a special case.
func selectNext(from ThreadID, blocked slotMask, n int) (ThreadID, bool) {
	for i := 1; i <= n; i++ {
		id := ThreadID((int(from) + i) % n)
		if !blocked.has(id) {
			return id, true
		}
	}
	return 0, false
}

// pickNext finds the next runnable slot, idling across tick boundaries
// when none is currently runnable (spec.md §4.3's "no runnable thread"
// path). The blocked-set snapshot is taken under the same interrupt
// discipline the tick ISR is bound by, then released before idling so the
// tick source can make progress and wake us.
func (k *Kernel) pickNext() ThreadID {
	for {
		var blocked slotMask
		k.arch.InterruptsDisabled(func() {
			blocked = k.disabled | k.suspended | k.sleeping
		})
		if id, ok := selectNext(k.current, blocked, k.cfg.Threads); ok {
			return id
		}
		k.arch.IdleUntilTick()
	}
}

// contextSwitch selects the next runnable thread and transfers control to
// it via Arch.Switch, updating the current-thread globals first — these
// are the only globals selection touches (spec.md §4.3). save chooses
// between the two flavors of the primitive: true is a cooperative yield
// that preserves the caller's context for later resumption (used by
// Yield, Sleep, and self-suspend); false is the scheduler-without-save
// path used by self-disable and self-replacing Create, neither of which
// returns to its caller.
func (k *Kernel) contextSwitch(save bool) {
	from := &k.slots[k.current]
	to := k.pickNext()

	k.current = to
	k.currentMask = idToMask(to)

	k.arch.Switch(from, &k.slots[to], save)
}
