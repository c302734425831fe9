package kernel

// TimeEventRegistry is the collaborator the timer driver (C6) consults
// when reprogramming the hardware timer: the set of pending one-shot or
// periodic time events that exist independently of any thread's own
// suspendedUntil. The timeevent package provides the concrete
// implementation; it is an interface here so a kernel can run with none
// at all (Config.DisableTimeEvents, or simply a nil registry).
type TimeEventRegistry interface {
	// NextTriggerTime reports the earliest instant, in nanoseconds on
	// the same clock as hal.Clock.Now, at which a registered event is
	// due. It returns EndOfTime if none are pending.
	NextTriggerTime() int64

	// Propagate fires and reschedules every event whose trigger time is
	// at or before now. It is called once per timer reprogramming pass
	// when the registry's own bookkeeping has fallen behind the clock
	// (the driver was stopped longer than expected, e.g. across a
	// sleep).
	Propagate(now int64)
}

// updateTriggerToNextTimingEvent reprograms the hardware timer to fire
// at the earlier of selectedEarliestSuspendedUntil (the closest thread
// wakeup the scheduler just computed) and the registry's own next
// trigger time, propagating any time events that are already overdue,
// and never programming an interval shorter than
// Config.MinSysTickSpacing (C6, spec §4.5).
func (k *Kernel) updateTriggerToNextTimingEvent(selectedEarliestSuspendedUntil int64) {
	now := k.platform.Now()

	nextTrigger := int64(EndOfTime)
	if k.timeEvents != nil && !k.cfg.DisableTimeEvents {
		nextTrigger = k.timeEvents.NextTriggerTime()
		if nextTrigger < now {
			k.timeEvents.Propagate(now)
			nextTrigger = k.timeEvents.NextTriggerTime()
		}
	}

	reactivationTime := min64(selectedEarliestSuspendedUntil, nextTrigger)
	k.timeToTryAgainToSchedule.Store(reactivationTime)

	intervalNanos := max64(reactivationTime-now, k.cfg.MinSysTickSpacing)
	k.platform.SetIntervalMicros(intervalNanos / 1000)
}
