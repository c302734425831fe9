package kernel

import (
	"testing"

	"nanokernel/hal"
)

// fakeClockPlatform supplies Now() and a CurrentStackAddr of 0 (which
// disables the stack guard's margin check); tests that exercise
// selectNext/findNextToRun directly never touch any of the other
// Platform methods, so they panic-stub them to catch accidental use.
type fakeClockPlatform struct {
	now int64
}

func (f *fakeClockPlatform) Now() int64 { return f.now }

func (f *fakeClockPlatform) InitContext(uintptr, func()) hal.Context           { panic("unused") }
func (f *fakeClockPlatform) SaveAndCallScheduler(hal.Context, func() bool)     { panic("unused") }
func (f *fakeClockPlatform) SwitchTo(hal.Context)                             { panic("unused") }
func (f *fakeClockPlatform) Start()                                           { panic("unused") }
func (f *fakeClockPlatform) Stop()                                            { panic("unused") }
func (f *fakeClockPlatform) SetIntervalMicros(int64)                          { panic("unused") }
func (f *fakeClockPlatform) SetInterruptHandler(func())                       { panic("unused") }
func (f *fakeClockPlatform) Disable() bool                                    { panic("unused") }
func (f *fakeClockPlatform) Restore(bool)                                     { panic("unused") }
func (f *fakeClockPlatform) EnterSleepMode()                                  { panic("unused") }
func (f *fakeClockPlatform) PartitionYield()                                  { panic("unused") }
func (f *fakeClockPlatform) CurrentStackAddr() uintptr                        { return 0 }

func newTestKernel(now int64) *Kernel {
	k := &Kernel{platform: &fakeClockPlatform{now: now}, diag: nopDiagnostics{}}
	k.timeToTryAgainToSchedule = newInterruptSafeInt64(EndOfTime)
	k.idle = newTestTCB("idle", 0, EndOfTime, 0)
	k.threads = append(k.threads, k.idle)
	return k
}

func newTestTCB(name string, priority int32, suspendedUntil, lastActivation int64) *TCB {
	t := &TCB{name: name, priority: priority}
	t.suspendedUntil = newInterruptSafeInt64(suspendedUntil)
	t.lastActivation = newInterruptSafeInt64(lastActivation)
	return t
}

func (k *Kernel) addTestThread(t *TCB) {
	k.threads = append(k.threads, t)
	if t.priority > k.maxPriority {
		k.maxPriority = t.priority
	}
}

func TestFindNextToRun_HigherPriorityWins(t *testing.T) {
	k := newTestKernel(100)
	low := newTestTCB("low", 1, 0, 0)
	high := newTestTCB("high", 5, 0, 0)
	k.addTestThread(low)
	k.addTestThread(high)

	got, _ := k.findNextToRun()
	if got != high {
		t.Fatalf("got %s, want high", got.name)
	}
}

func TestFindNextToRun_TieBreaksByEarlierLastActivation(t *testing.T) {
	k := newTestKernel(100)
	a := newTestTCB("a", 5, 0, 0)
	b := newTestTCB("b", 5, 0, 10)
	k.addTestThread(a)
	k.addTestThread(b)

	got, _ := k.findNextToRun()
	if got != a {
		t.Fatalf("got %s, want a (earlier lastActivation)", got.name)
	}
}

func TestFindNextToRun_EqualTiesFallToRegistrationOrder(t *testing.T) {
	k := newTestKernel(100)
	a := newTestTCB("a", 5, 0, 0)
	b := newTestTCB("b", 5, 0, 0)
	k.addTestThread(a)
	k.addTestThread(b)

	got, _ := k.findNextToRun()
	if got != a {
		t.Fatalf("got %s, want a (first registered wins an exact tie)", got.name)
	}
}

func TestFindNextToRun_SuspendedThreadsAreSkipped(t *testing.T) {
	k := newTestKernel(100)
	sleeping := newTestTCB("sleeping", 10, 200, 0)
	runnable := newTestTCB("runnable", 1, 0, 0)
	k.addTestThread(sleeping)
	k.addTestThread(runnable)

	got, earliest := k.findNextToRun()
	if got != runnable {
		t.Fatalf("got %s, want runnable", got.name)
	}
	if earliest != 200 {
		t.Fatalf("earliest = %d, want 200", earliest)
	}
}

func TestFindNextToRun_DefaultsToIdleWhenNothingRunnable(t *testing.T) {
	k := newTestKernel(100)
	sleeping := newTestTCB("sleeping", 10, 500, 0)
	k.addTestThread(sleeping)

	got, earliest := k.findNextToRun()
	if got != k.idle {
		t.Fatalf("got %s, want idle", got.name)
	}
	if earliest != 500 {
		t.Fatalf("earliest = %d, want 500", earliest)
	}
}

func TestFindNextToRun_ExcludesStrictlyLowerPriorityFutureThreadsFromEarliest(t *testing.T) {
	k := newTestKernel(100)
	runnable := newTestTCB("runnable", 10, 0, 0)
	// lowFuture will wake up sooner than highFuture, but it can never
	// outrank runnable's priority even once it wakes, so its deadline
	// must not shorten the next timer interval.
	lowFuture := newTestTCB("lowFuture", 1, 150, 0)
	highFuture := newTestTCB("highFuture", 10, 300, 0)
	k.addTestThread(runnable)
	k.addTestThread(lowFuture)
	k.addTestThread(highFuture)

	got, earliest := k.findNextToRun()
	if got != runnable {
		t.Fatalf("got %s, want runnable", got.name)
	}
	if earliest != 300 {
		t.Fatalf("earliest = %d, want 300 (lowFuture's 150 must be excluded)", earliest)
	}
}

func TestFindNextToRunFromISR_AgreesWithThreadContextVariant(t *testing.T) {
	k := newTestKernel(100)
	a := newTestTCB("a", 5, 0, 0)
	b := newTestTCB("b", 5, 0, 10)
	k.addTestThread(a)
	k.addTestThread(b)

	wantThread, wantEarliest := k.findNextToRun()
	gotThread, gotEarliest := k.findNextToRunFromISR()
	if gotThread != wantThread || gotEarliest != wantEarliest {
		t.Fatalf("ISR variant disagreed: got (%s, %d), want (%s, %d)",
			gotThread.name, gotEarliest, wantThread.name, wantEarliest)
	}
}
