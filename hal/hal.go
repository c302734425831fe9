// Package hal is the only contact point between the scheduler core and the
// outside world: a hardware abstraction layer providing context-switch
// primitives, a programmable one-shot timer, interrupt enable/disable, the
// current stack pointer, and a handful of platform capabilities the idle
// thread needs (sleep mode, partition yield).
//
// Two builds satisfy Platform: the hosted "Linux simulator" target
// (!tinygo, host.go) used for development and the test suite, and a
// TinyGo bare-metal target (tinygo && baremetal, baremetal.go).
package hal

// Context is an opaque saved machine context, owned entirely by the
// Platform implementation. The scheduler core never inspects it.
type Context interface{}

// Logger writes newline-delimited diagnostic lines. It is the core's only
// output path (stack overflow reports, boot banners).
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// ContextSwitcher provides the three primitives external interface (a)
// requires for context switching (spec §6): priming a new thread's first
// entry, saving the caller's context before entering the scheduler, and
// restoring/resuming a previously saved context.
type ContextSwitcher interface {
	// InitContext primes a context so that the first SwitchTo onto it
	// invokes trampoline. stackTop is the highest address of the
	// thread's stack region (informational; only meaningful on targets
	// that need to seed a real call stack).
	InitContext(stackTop uintptr, trampoline func()) Context

	// SaveAndCallScheduler saves the calling thread's live context into
	// self, then invokes schedule. schedule reports whether it switched
	// to a different context. If it did, SaveAndCallScheduler does not
	// return until self is resumed by a later SwitchTo call. If it did
	// not (the same thread was reselected), SaveAndCallScheduler returns
	// immediately.
	SaveAndCallScheduler(self Context, schedule func() (switched bool))

	// SwitchTo restores and resumes ctx.
	SwitchTo(ctx Context)
}

// Timer is the single hardware one-shot backing C6 (timer driver).
type Timer interface {
	Start()
	Stop()
	SetIntervalMicros(us int64)
	// SetInterruptHandler registers the function invoked when the timer
	// fires. It must be set once, before Start is first called.
	SetInterruptHandler(fn func())
}

// InterruptController masks and unmasks the single interrupt line the
// timer uses. Disable returns the previous mask state so callers can
// nest/restore correctly.
type InterruptController interface {
	Disable() (wasEnabled bool)
	Restore(wasEnabled bool)
}

// SleepController lowers the device into the deepest sleep mode
// compatible with the currently configured wake source (C8).
type SleepController interface {
	EnterSleepMode()
}

// PartitionYielder yields the entire partition to a higher-level
// scheduler: a host process on the simulator, an ARINC-653 partition on
// avionics targets, a no-op on bare metal.
type PartitionYielder interface {
	PartitionYield()
}

// Clock is the monotonic nanosecond time base (C1).
type Clock interface {
	Now() int64
}

// StackPointerReader reports the current stack pointer, used by the
// stack guard (C9). A return value of 0 means "not tracked on this
// platform" and disables the margin check (the canary check still
// applies, since it only inspects memory the core itself owns).
type StackPointerReader interface {
	CurrentStackAddr() uintptr
}

// Platform bundles everything the scheduler core needs from the
// underlying hardware (or its host simulation).
type Platform interface {
	ContextSwitcher
	Timer
	InterruptController
	SleepController
	PartitionYielder
	Clock
	StackPointerReader
}

// HAL is the process-wide handle for platform capabilities, mirroring the
// shape of a typical board support package: one accessor per concern.
type HAL interface {
	Platform() Platform
	Logger() Logger
}
