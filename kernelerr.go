package kernel

import "log"

// assertValidID enforces the precondition every public operation in
// spec.md §4.4 shares: t_id must be in [0, N). Out of range is a
// precondition violation (spec.md §7) — in a debug build it is reported
// and the process halted; in a release build (Config.Debug false) the
// core takes the teacher's approach to out-of-range data (cpu.go never
// checks bus addresses either) and trusts the caller, since spec.md §7
// is explicit that these are undefined behavior, not recoverable errors.
func (k *Kernel) assertValidID(id ThreadID) {
	if !k.cfg.Debug {
		return
	}
	if int(id) >= k.cfg.Threads {
		log.Panicf("kernel: precondition violated: thread id %d out of range [0, %d)", id, k.cfg.Threads)
	}
}

// assertEntry enforces that Create's entry point is never nil, per
// spec.md §4.4.
func (k *Kernel) assertEntry(entry EntryFunc) {
	if !k.cfg.Debug {
		return
	}
	if entry == nil {
		log.Panicf("kernel: precondition violated: nil entry point passed to Create")
	}
}
