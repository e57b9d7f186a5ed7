package kernel

// Tick is the 1 ms tick ISR of spec.md §4.5. It must be wired to fire
// every millisecond by the Arch in use (real hardware calls it from the
// timer compare-match vector; SimArch calls it from its simulated clock).
// It advances the millisecond counter, walks a snapshot of the sleeping
// set from slot 0, decrementing each sleeping slot's counter and clearing
// its bit in the sleeping set once the counter reaches zero. Each visited
// bit is dropped from the local snapshot, and the walk exits as soon as
// the snapshot is empty, so its cost is
// bounded by the highest sleeping slot index, not by the thread count
// (spec.md §9).
func (k *Kernel) Tick() {
	k.arch.InterruptsDisabled(func() {
		k.millis++

		walk := k.sleeping
		for i := 0; walk != 0 && i < k.cfg.Threads; i++ {
			id := ThreadID(i)
			if !walk.has(id) {
				continue
			}
			walk.clear(id)
			if k.slots[id].SleepMillis > 0 {
				k.slots[id].SleepMillis--
			}
			if k.slots[id].SleepMillis == 0 {
				k.sleeping.clear(id)
			}
		}
	})

	k.arch.NotifyTick()
}
