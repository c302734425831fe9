package kernel

import "testing"

type recordingTimerPlatform struct {
	fakeClockPlatform
	intervalMicros int64
}

func (r *recordingTimerPlatform) SetIntervalMicros(us int64) { r.intervalMicros = us }

type fakeEvents struct {
	next         int64
	propagatedAt int64
	propagated   bool
}

func (f *fakeEvents) NextTriggerTime() int64 { return f.next }
func (f *fakeEvents) Propagate(now int64) {
	f.propagated = true
	f.propagatedAt = now
	f.next = now + 1_000_000_000 // pretend it rescheduled itself a second out
}

func TestUpdateTriggerToNextTimingEvent_ClampsToMinSpacing(t *testing.T) {
	p := &recordingTimerPlatform{fakeClockPlatform: fakeClockPlatform{now: 1000}}
	k := &Kernel{platform: p, cfg: Config{MinSysTickSpacing: 50_000}}
	k.timeToTryAgainToSchedule = newInterruptSafeInt64(EndOfTime)

	// selectedEarliestSuspendedUntil is only 10ns out, far below the
	// floor, so the programmed interval must be clamped to 50us.
	k.updateTriggerToNextTimingEvent(1010)

	if p.intervalMicros != 50 {
		t.Fatalf("intervalMicros = %d, want 50 (clamped)", p.intervalMicros)
	}
}

func TestUpdateTriggerToNextTimingEvent_TakesEarlierOfSelectionAndTimeEvent(t *testing.T) {
	p := &recordingTimerPlatform{fakeClockPlatform: fakeClockPlatform{now: 0}}
	events := &fakeEvents{next: 5_000_000} // 5ms out
	k := &Kernel{platform: p, cfg: Config{MinSysTickSpacing: 1_000}, timeEvents: events}
	k.timeToTryAgainToSchedule = newInterruptSafeInt64(EndOfTime)

	// selectedEarliestSuspendedUntil is 50ms out, later than the time
	// event's 5ms, so the time event should win.
	k.updateTriggerToNextTimingEvent(50_000_000)

	if p.intervalMicros != 5_000 {
		t.Fatalf("intervalMicros = %d, want 5000 (5ms time event wins)", p.intervalMicros)
	}
}

func TestUpdateTriggerToNextTimingEvent_PropagatesOverdueEvents(t *testing.T) {
	p := &recordingTimerPlatform{fakeClockPlatform: fakeClockPlatform{now: 10_000_000}}
	events := &fakeEvents{next: 1_000_000} // already a long time in the past
	k := &Kernel{platform: p, cfg: Config{MinSysTickSpacing: 1_000}, timeEvents: events}
	k.timeToTryAgainToSchedule = newInterruptSafeInt64(EndOfTime)

	k.updateTriggerToNextTimingEvent(EndOfTime)

	if !events.propagated {
		t.Fatal("expected overdue time event to be propagated")
	}
	if events.propagatedAt != 10_000_000 {
		t.Fatalf("propagated at %d, want 10_000_000", events.propagatedAt)
	}
}
