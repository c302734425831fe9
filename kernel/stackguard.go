package kernel

// checkStackGuard inspects the thread that was running going into this
// schedule pass (C9, spec §4.6): a margin check against the live stack
// pointer, where the platform can report one, and a canary check
// against memory the core itself owns, which is meaningful regardless
// of platform. Either violation permanently deactivates the thread
// (suspendedUntil = EndOfTime) and reports it; it does not panic the
// whole system, so the rest of the schedule pass continues and picks
// among whatever else is runnable.
func (k *Kernel) checkStackGuard(t *TCB) {
	if t == nil {
		return
	}

	if sp := k.platform.CurrentStackAddr(); sp != 0 {
		margin := int64(sp) - int64(t.stackBeginAddr())
		if margin < int64(k.cfg.StackMarginBytes) {
			k.diag.Printf("!StackOverflow! %s DEACTIVATED: margin=%d", t.name, margin)
			t.suspendedUntil.Store(EndOfTime)
			return
		}
	}

	if !t.canaryIntact() {
		k.diag.Printf("!PANIC! %s ran beyond its stack, DEACTIVATED", t.name)
		t.suspendedUntil.Store(EndOfTime)
	}
}
