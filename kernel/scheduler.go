package kernel

// findNextToRun implements the selection rule (C5, spec §4.1): among
// threads whose suspendedUntil is already in the past, pick the
// highest priority, breaking ties by earliest lastActivation (least
// recently run wins); among threads still suspended, fold their
// suspendedUntil into selectedEarliestSuspendedUntil, but only if their
// priority is at least as high as the thread currently winning the
// first category, so a future wakeup that could never outrank the
// pick doesn't needlessly shorten the next timer interval. The idle
// thread is the default winner when nothing else is runnable; it is
// always present in the thread table with priority 0, so every
// "priority >" comparison above naturally falls back to it.
func (k *Kernel) findNextToRun() (*TCB, int64) {
	return k.selectNext(func(t *TCB) int64 { return t.suspendedUntil.Load() },
		func(t *TCB) int64 { return t.lastActivation.Load() })
}

// findNextToRunFromISR is identical to findNextToRun except it reads
// the two atomic cells through their ISR-safe accessors, avoiding
// redundant interrupt re-masking on a target where that would matter.
func (k *Kernel) findNextToRunFromISR() (*TCB, int64) {
	return k.selectNext(func(t *TCB) int64 { return t.suspendedUntil.LoadFromISR() },
		func(t *TCB) int64 { return t.lastActivation.LoadFromISR() })
}

func (k *Kernel) selectNext(suspendedUntil, lastActivation func(*TCB) int64) (*TCB, int64) {
	now := k.platform.Now()
	best := k.idle
	bestLastActivation := lastActivation(best)
	selectedEarliestSuspendedUntil := int64(EndOfTime)

	for _, t := range k.threads {
		su := suspendedUntil(t)
		if su <= now {
			if t.priority > best.priority ||
				(t.priority == best.priority && lastActivation(t) < bestLastActivation) {
				best = t
				bestLastActivation = lastActivation(t)
			}
			continue
		}
		if t.priority >= best.priority && su < selectedEarliestSuspendedUntil {
			selectedEarliestSuspendedUntil = su
		}
	}

	return best, selectedEarliestSuspendedUntil
}

// schedule performs one schedule pass: select the next thread to run,
// reprogram the timer, bump the schedule counter exactly once, and
// switch context if the selection differs from the thread that was
// running. It reports whether a switch happened. isr selects which of
// findNextToRun/findNextToRunFromISR is used when no preselected
// result is available.
func (k *Kernel) schedule(isr bool) bool {
	k.checkStackGuard(k.currentThread)

	var next *TCB
	var earliest int64
	if k.preSelectedNextToRun != nil {
		next, earliest = k.preSelectedNextToRun, k.preSelectedEarliestSuspendedUntil
		k.preSelectedNextToRun, k.preSelectedEarliestSuspendedUntil = nil, 0
	} else if isr {
		next, earliest = k.findNextToRunFromISR()
	} else {
		next, earliest = k.findNextToRun()
	}

	k.updateTriggerToNextTimingEvent(earliest)
	k.scheduleCounter.Add(1)

	switched := next != k.currentThread
	k.currentThread = next
	next.lastActivation.Store(k.platform.Now())

	// Whether or not the thread actually changed, the scheduler is
	// about to let something run: clear the yield abort flag and
	// restart the timer. Yield() may have stopped the timer in
	// anticipation of a switch that a race then made unnecessary; if
	// we only restarted it on the switched branch, that race would
	// leave the timer stopped forever.
	k.yieldSchedulingLock.Store(false)
	k.platform.Start()

	if switched {
		k.platform.SwitchTo(next.context)
	}
	return switched
}

// ScheduleFromISR is the timer's interrupt handler. It aborts without
// doing anything if a Yield call is currently mid-flight
// (yieldSchedulingLock set): that yield already has a consistent
// preselection in hand, and running the scheduler again here could
// race it onto a stale one (spec §5).
func (k *Kernel) ScheduleFromISR() {
	if k.yieldSchedulingLock.Load() {
		return
	}
	self := k.currentThread
	k.platform.SaveAndCallScheduler(self.context, func() bool {
		return k.schedule(true)
	})
}

// Yield voluntarily offers the CPU to the scheduler. Its fast path
// (spec §4.2) recomputes the selection without touching the timer or
// the context switch machinery; if nothing outranks the current
// thread, or if the ISR has already run a fresh schedule pass while
// this computation was in flight, Yield returns immediately having
// done no more work than the recomputation itself. Only when a genuine
// switch is warranted does it stop the timer, set the abort flag, hand
// its result to schedule() as a preselection, and enter the scheduler.
func (k *Kernel) Yield() {
	startCounter := k.scheduleCounter.Load()

	preselection, earliest := k.findNextToRun()

	if k.scheduleCounter.Load() != startCounter {
		return
	}
	if preselection == k.currentThread {
		return
	}

	// An interrupt already latched the instant before Stop() takes
	// effect could still fire while the two preSelected fields below
	// are mid-write; mask it for that narrow window rather than rely
	// on yieldSchedulingLock alone, which only protects against an ISR
	// that checks it after the write has completed.
	wasEnabled := k.platform.Disable()
	k.yieldSchedulingLock.Store(true)
	k.platform.Stop()

	if k.scheduleCounter.Load() == startCounter {
		k.preSelectedNextToRun = preselection
		k.preSelectedEarliestSuspendedUntil = earliest
	}
	k.platform.Restore(wasEnabled)

	self := k.currentThread
	k.platform.SaveAndCallScheduler(self.context, func() bool {
		return k.schedule(false)
	})
}
