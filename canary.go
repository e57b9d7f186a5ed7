package kernel

// canarySentinelByte is the sentinel Init writes to the deepest byte of
// each slot's stack region when Config.Canary is set (spec.md §6). The
// mechanism is informational only: the core never reads it back itself,
// and an application is free to poll ThreadCanaryOK on whatever schedule
// it likes (spec.md §7 — "not actively detected by the core").
const canarySentinelByte = 0xA5

// ThreadCanaryOK reports whether id's canary byte still holds the
// sentinel Init wrote, when arch implements CanaryArch and Config.Canary
// is enabled. It returns true whenever canaries are not in use, since an
// unchecked stack cannot be reported corrupted.
func (k *Kernel) ThreadCanaryOK(id ThreadID) bool {
	k.assertValidID(id)
	canaryArch, ok := k.arch.(CanaryArch)
	if !ok || !k.cfg.Canary {
		return true
	}
	return canaryArch.CheckCanary(&k.slots[id])
}
