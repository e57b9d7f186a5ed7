package kernel

// Snapshot is an in-memory capture of everything spec.md §3 calls global
// or per-slot state. Persisted (on-disk or on-wire) state is an explicit
// Non-goal of this core ("all state is in RAM and is ephemeral" —
// spec.md §6), so unlike the teacher's Serialize/Deserialize this does
// not produce a byte buffer; it exists so tests can capture, compare, and
// replay kernel state without reaching into unexported fields from
// another test file, the same role serialize.go plays for cpu_test.go but
// scoped to what this domain actually needs: comparable values, not a
// wire format.
type Snapshot struct {
	Disabled  uint8
	Suspended uint8
	Sleeping  uint8

	Current ThreadID
	Millis  uint32

	SleepMillis [MaxSlots]uint16
	SP          [MaxSlots]uintptr
}

// Snapshot captures the kernel's current state.
func (k *Kernel) Snapshot() Snapshot {
	var s Snapshot
	k.arch.InterruptsDisabled(func() {
		s.Disabled = uint8(k.disabled)
		s.Suspended = uint8(k.suspended)
		s.Sleeping = uint8(k.sleeping)
		s.Current = k.current
		s.Millis = k.millis
		for i := 0; i < k.cfg.Threads; i++ {
			s.SleepMillis[i] = k.slots[i].SleepMillis
			s.SP[i] = k.slots[i].SP
		}
	})
	return s
}

// Restore replays a previously captured Snapshot back into the kernel.
// It does not touch the Arch or its execution contexts — it is meant for
// asserting invariants across a sequence of operations in tests, not for
// resuming real execution from an arbitrary point.
func (k *Kernel) Restore(s Snapshot) {
	k.arch.InterruptsDisabled(func() {
		k.disabled = slotMask(s.Disabled)
		k.suspended = slotMask(s.Suspended)
		k.sleeping = slotMask(s.Sleeping)
		k.current = s.Current
		k.currentMask = idToMask(s.Current)
		k.millis = s.Millis
		for i := 0; i < k.cfg.Threads; i++ {
			k.slots[i].SleepMillis = s.SleepMillis[i]
			k.slots[i].SP = s.SP[i]
		}
	})
}
