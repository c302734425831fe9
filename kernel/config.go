package kernel

// Config holds the tunables the scheduling core needs and that vary by
// board: tick granularity, stack guard margin, and whether time events
// and sleep-on-idle are in play at all.
type Config struct {
	// MinSysTickSpacing is the shortest interval, in nanoseconds, the
	// timer will ever be reprogrammed to. It bounds how often the
	// scheduler can be re-entered and protects against a misbehaving
	// time event starving the CPU with back-to-back ticks.
	MinSysTickSpacing int64

	// TimeWakeupFromSleep is the platform's typical wake-from-sleep
	// latency, in nanoseconds. The idle thread only actually sleeps
	// when the time until the next deadline exceeds this by a margin.
	TimeWakeupFromSleep int64

	// StackMarginBytes is the minimum free space, in bytes, a thread's
	// stack must keep between its stack pointer and its stack region's
	// low end before the guard deactivates it.
	StackMarginBytes int

	// DisableTimeEvents skips consulting the TimeEventRegistry when
	// reprogramming the timer, as if none were ever scheduled.
	DisableTimeEvents bool

	// SleepOnIdle lets the idle thread stop the timer and enter the
	// platform's sleep mode when nothing is due to run soon. When
	// false, the idle thread busy-waits, which is sometimes preferable
	// on targets where sleep mode loses timer state.
	SleepOnIdle bool
}

// DefaultConfig returns tunables suitable for a general-purpose
// microcontroller target.
func DefaultConfig() Config {
	return Config{
		MinSysTickSpacing:   50_000,  // 50us
		TimeWakeupFromSleep: 100_000, // 100us
		StackMarginBytes:    256,
		DisableTimeEvents:   false,
		SleepOnIdle:         true,
	}
}
