package kernel

// SuspendCallerUntil blocks the calling thread until reactivationTime
// (on the platform clock) or until some other thread or ISR calls
// Resume on it, whichever comes first. signaler identifies what the
// caller is waiting for, for FindNextWaitingFor to later match against;
// pass nil if the suspension is a plain timed sleep with nothing to
// signal it directly. It reports whether the wakeup was a Resume
// (true) rather than the deadline elapsing (false).
//
// The caller's priority is temporarily raised to the kernel's maximum
// while its waitingFor/suspendedUntil pair is being published, a
// priority-ceiling scope standing in for priority inheritance: it
// guarantees no lower-priority thread can be scheduled in between the
// two writes and observe them half-updated (spec §5, Design Notes).
func (k *Kernel) SuspendCallerUntil(reactivationTime int64, signaler Signaler) bool {
	caller := k.currentThread

	restore := k.PriorityCeilerInScope(k.maxPriority)
	caller.waitingFor = signaler
	caller.suspendedUntil.Store(reactivationTime)
	restore()

	k.Yield()

	caller.waitingFor = nil
	return caller.suspendedUntil.Load() == 0
}

// Resume wakes t immediately, regardless of its deadline. It is safe to
// call from thread context or from inside the timer ISR handler.
func (k *Kernel) Resume(t *TCB) {
	t.waitingFor = nil
	t.suspendedUntil.Store(0)
	k.timeToTryAgainToSchedule.Store(0)
}

// FindNextWaitingFor reports the highest-priority thread currently
// waiting on signaler (ties broken by earliest lastActivation, same as
// the scheduler's own selection rule), or nil if none is. signaler must
// be non-nil; nil identifies "not waiting", not a real wait target.
func (k *Kernel) FindNextWaitingFor(signaler Signaler) *TCB {
	if signaler == nil {
		return nil
	}
	var best *TCB
	for _, t := range k.threads {
		if t.waitingFor != signaler {
			continue
		}
		if best == nil || t.priority > best.priority ||
			(t.priority == best.priority && t.lastActivation.Load() < best.lastActivation.Load()) {
			best = t
		}
	}
	return best
}

// PriorityCeilerInScope temporarily raises the calling thread's
// priority to ceiling and returns a function that restores it. It is
// the substitute for a priority-inheritance mutex described in the
// design notes: rather than tracking who a lock is held for and
// boosting them, a caller that needs to guarantee it won't be preempted
// by anything at or below ceiling simply raises its own priority for
// the scope. The returned restore function must run on the same
// thread, typically via defer.
func (k *Kernel) PriorityCeilerInScope(ceiling int32) func() {
	caller := k.currentThread
	previous := caller.priority
	if ceiling > previous {
		caller.priority = ceiling
	}
	return func() { caller.priority = previous }
}
