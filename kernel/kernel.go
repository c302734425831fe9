// Package kernel implements the scheduling core of a small real-time
// system: a priority-preemptive scheduler with cooperative fallback,
// timer-driven reactivation, suspend/resume based synchronization, and
// a stack guard. It depends on nothing but the hal package; everything
// platform-specific (context switching, the timer, sleep, interrupt
// masking) is injected through hal.Platform.
package kernel

import (
	"context"
	"errors"
	"sync/atomic"

	"nanokernel/hal"
)

const maxThreads = 64

// Kernel is the single scheduler instance for a process. There is
// exactly one per program, constructed with New and started with Run;
// its state (the thread table, the current thread, the schedule
// counter) is inherently global to the scheduling it performs, so
// unlike most of this codebase it is not designed to be instantiated
// more than once.
type Kernel struct {
	platform hal.Platform
	cfg      Config
	diag     Diagnostics

	timeEvents TimeEventRegistry

	threads     []*TCB
	idle        *TCB
	maxPriority int32
	started     bool

	currentThread   *TCB
	scheduleCounter InterruptSafeInt64

	timeToTryAgainToSchedule InterruptSafeInt64
	yieldSchedulingLock      atomic.Bool

	preSelectedNextToRun              *TCB
	preSelectedEarliestSuspendedUntil int64

	shuttingDown atomic.Bool
}

// New constructs a Kernel bound to the given platform. diag may be nil,
// in which case diagnostics are discarded. events may be nil if the
// program has no time events of its own (threads can still suspend
// themselves until a deadline; only the TimeEventRegistry collaborator
// is optional).
func New(platform hal.Platform, cfg Config, diag Diagnostics, events TimeEventRegistry) *Kernel {
	if diag == nil {
		diag = nopDiagnostics{}
	}
	k := &Kernel{
		platform:   platform,
		cfg:        cfg,
		diag:       diag,
		timeEvents: events,
	}
	k.timeToTryAgainToSchedule = newInterruptSafeInt64(EndOfTime)
	k.scheduleCounter = newInterruptSafeInt64(0)
	k.addIdleThread()
	return k
}

// AddThread registers a new thread. It may only be called before Run.
// stackSize smaller than the platform minimum is rounded up.
func (k *Kernel) AddThread(name string, priority int32, stackSize int, thread Thread) *TCB {
	if k.started {
		panic("kernel: AddThread called after Run")
	}
	if len(k.threads) >= maxThreads {
		panic("kernel: thread table full")
	}
	if stackSize < minStackSize {
		stackSize = minStackSize
	}

	t := &TCB{
		name:           name,
		priority:       priority,
		stackSize:      stackSize,
		stackBegin:     make([]byte, stackSize),
		thread:         thread,
		suspendedUntil: newInterruptSafeInt64(EndOfTime),
		lastActivation: newInterruptSafeInt64(0),
	}
	t.paintStack()
	t.context = k.platform.InitContext(t.stackTopAddr(), func() { k.threadTrampoline(t) })
	registerDestructionGuard(k, t)

	k.threads = append(k.threads, t)
	if priority > k.maxPriority {
		k.maxPriority = priority
	}
	return t
}

func (k *Kernel) addIdleThread() {
	id := &idleThread{k: k}
	k.idle = k.AddThread("idle", 0, minStackSize, id)
}

// threadTrampoline is run once, on the thread's own context, the first
// time it is switched to. When Run returns, the thread retires: it
// yields forever with its deadline pinned to EndOfTime, matching the
// retire loop of a thread whose body has returned (spec §4.3/§7).
func (k *Kernel) threadTrampoline(t *TCB) {
	t.suspendedUntil.Store(0)
	t.thread.Run()
	for {
		t.suspendedUntil.Store(EndOfTime)
		k.Yield()
	}
}

// GetCurrentThread reports the thread currently selected to run. It may
// be called from thread context or from inside the timer ISR handler.
func (k *Kernel) GetCurrentThread() *TCB { return k.currentThread }

// GetScheduleCounter reports how many schedule passes have completed.
// Safe to call from any context.
func (k *Kernel) GetScheduleCounter() uint64 { return uint64(k.scheduleCounter.Load()) }

// Now reports the current time on the platform's monotonic clock.
func (k *Kernel) Now() int64 { return k.platform.Now() }

// GetMaxStackUsage reports the high-water mark of stack bytes a thread
// has used, computed by scanning for the deepest point its canary has
// been disturbed.
func (k *Kernel) GetMaxStackUsage(t *TCB) int { return t.maxStackUsage() }

// Threads returns a snapshot of every registered thread, including the
// idle thread. Safe to call at any time after New; callers must not
// mutate the returned slice's backing TCBs except through the Kernel's
// own methods.
func (k *Kernel) Threads() []*TCB {
	return append([]*TCB(nil), k.threads...)
}

// Run initializes every registered thread's suspension deadline,
// arms the timer, and switches onto the first thread the scheduler
// selects. It blocks until ctx is cancelled; on a bare-metal build,
// callers pass context.Background() and it never returns.
func (k *Kernel) Run(ctx context.Context) error {
	if k.started {
		return errors.New("kernel: Run called twice")
	}
	k.started = true

	k.diag.Printf("Threads in system:")
	for _, t := range k.threads {
		k.diag.Printf("  prio=%-4d stack=%-6d %s", t.priority, t.stackSize, t.name)
		t.suspendedUntil.Store(0)
	}

	k.platform.SetInterruptHandler(k.ScheduleFromISR)

	first, earliest := k.findNextToRun()
	k.updateTriggerToNextTimingEvent(earliest)
	k.scheduleCounter.Store(1)
	k.currentThread = first
	first.lastActivation.Store(k.platform.Now())
	k.yieldSchedulingLock.Store(false)

	k.platform.Start()
	k.platform.SwitchTo(first.context)

	<-ctx.Done()
	k.shuttingDown.Store(true)
	k.platform.Stop()
	return ctx.Err()
}
