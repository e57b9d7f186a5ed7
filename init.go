package kernel

// StackRegion is a compile-time-assigned stack for one slot: a base
// address and size, normally carved out by the linker (spec.md §6).
type StackRegion struct {
	Base uintptr
	Size uintptr
}

// Config is the compile-time configuration spec.md §6 describes —
// thread count, per-slot stack regions, and whether canaries are written.
// It is a plain struct rather than package-level constants so the same
// core can be exercised under several configurations in tests, the way
// cpu.go's CPU is constructed from a caller-supplied Bus rather than a
// single hard-coded one.
type Config struct {
	// Threads is MAX_THREADS: the number of usable slots, in [1, MaxSlots].
	Threads int

	// Stacks holds one region per slot in [0, Threads). Unused trailing
	// entries are ignored.
	Stacks [MaxSlots]StackRegion

	// Canary enables writing a sentinel byte to each slot's canary
	// location at Init, if arch also implements CanaryArch.
	Canary bool

	// Debug enables the precondition-assertion facility of spec.md §7.
	// Release builds (Debug false) skip the checks entirely, matching
	// the teacher's unchecked bus addressing.
	Debug bool
}

// Kernel is the cooperative scheduler core: the thread-slot bitsets, the
// per-slot data, and the millisecond counter, plus the Arch it drives.
// There is exactly one of these per running system (spec.md §9: "by
// design, process-wide singletons with a single init"); nothing prevents
// constructing more than one in a test binary, which is exactly how this
// repo's tests get coverage without a single global.
type Kernel struct {
	cfg  Config
	arch Arch

	slots [MaxSlots]Slot

	disabled  slotMask
	suspended slotMask
	sleeping  slotMask

	current     ThreadID
	currentMask slotMask

	millis uint32
}

// New constructs a Kernel wired to arch but does not yet run Init. Callers
// that want the one-shot setup described in spec.md §4.6 must call Init
// before starting the application, mirroring cpu.go's New/Reset split
// (New wires the collaborator; Reset/Init performs the hardware sequence).
func New(cfg Config, arch Arch) *Kernel {
	return &Kernel{cfg: cfg, arch: arch}
}

// Init performs the one-shot setup of spec.md §4.6: every slot's saved
// stack pointer is set to its stack base (no frame yet), sleep counters
// are zeroed, canaries are written if configured, slot 0 becomes the sole
// runnable thread, the millisecond counter is zeroed, and the tick is
// armed and enabled. Global interrupts are left exactly as the caller had
// them; enabling them is the application's job once it is ready.
func (k *Kernel) Init() {
	canaryArch, hasCanary := k.arch.(CanaryArch)

	for i := 0; i < k.cfg.Threads; i++ {
		id := ThreadID(i)
		k.slots[id] = Slot{
			ID:             id,
			SP:             k.cfg.Stacks[id].Base,
			StackBase:      k.cfg.Stacks[id].Base,
			StackSize:      k.cfg.Stacks[id].Size,
			CanaryAddr:     k.cfg.Stacks[id].Base - k.cfg.Stacks[id].Size,
			CanarySentinel: canarySentinelByte,
		}
		if k.cfg.Canary && hasCanary {
			canaryArch.WriteCanary(&k.slots[id])
		}
	}

	k.current = 0
	k.currentMask = idToMask(0)

	k.disabled = 0
	for i := 1; i < k.cfg.Threads; i++ {
		k.disabled.set(ThreadID(i))
	}
	k.suspended = 0
	k.sleeping = 0
	k.millis = 0

	k.arch.ArmTick(k.Tick)
	k.arch.EnableTickInterrupt()
}
