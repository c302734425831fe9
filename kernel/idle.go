package kernel

// idleThread is the kernel's own lowest-priority thread, always present
// so findNextToRun always has a default winner when nothing else is
// runnable. When Config.SleepOnIdle is set, it also reprograms the
// timer for a longer interval and asks the platform to enter its sleep
// mode, waking just in time for the next deadline (C8, spec §4.4).
type idleThread struct {
	k         *Kernel
	idleCount uint64
}

func (id *idleThread) Run() {
	k := id.k
	for {
		id.idleCount++

		// Due to wrong usage of priority ceiling scopes elsewhere, the
		// idle thread has occasionally been observed running at an
		// elevated priority; reclamp it defensively every pass.
		k.idle.priority = 0

		k.platform.PartitionYield()
		k.Yield()

		if !k.cfg.SleepOnIdle {
			continue
		}
		id.trySleep()
	}
}

func (id *idleThread) trySleep() {
	k := id.k

	reactivationTime := k.timeToTryAgainToSchedule.Load()
	if k.timeEvents != nil && !k.cfg.DisableTimeEvents {
		if t := k.timeEvents.NextTriggerTime(); t < reactivationTime {
			reactivationTime = t
		}
	}

	now := k.platform.Now()
	sleepInterval := reactivationTime - now - k.cfg.TimeWakeupFromSleep - k.cfg.MinSysTickSpacing
	if sleepInterval <= k.cfg.TimeWakeupFromSleep || sleepInterval <= k.cfg.MinSysTickSpacing {
		// Not worth the wake-up latency; stay on the regular tick.
		return
	}

	k.platform.Stop()
	k.platform.SetIntervalMicros(sleepInterval / 1000)
	k.platform.Start()

	k.platform.EnterSleepMode()

	k.platform.Stop()
	remaining := max64(reactivationTime-k.platform.Now(), k.cfg.MinSysTickSpacing)
	k.platform.SetIntervalMicros(remaining / 1000)
	k.platform.Start()
}
