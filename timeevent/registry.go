// Package timeevent implements kernel.TimeEventRegistry: a small table
// of one-shot and periodic deadlines that exist independently of any
// particular thread's own suspendedUntil. It is grounded on the
// sleeper-array/wakeReady shape of the teacher's time service, adapted
// from a mailbox-request-driven design (a thread sends a sleep request,
// a service goroutine wakes it later) into a direct registration API a
// kernel thread calls on itself.
package timeevent

import "sync"

// Kind distinguishes a periodic event, which reschedules itself every
// time it fires, from a one-shot that is removed after firing once.
type Kind int

const (
	OneShot Kind = iota
	Periodic
)

type entry struct {
	inUse    bool
	kind     Kind
	due      int64
	interval int64
	fire     func(now int64)
}

const maxEvents = 32

// Registry is a fixed-capacity table of time events. The zero value is
// ready to use.
type Registry struct {
	mu      sync.Mutex
	entries [maxEvents]entry
}

// Handle identifies a registered event so it can be cancelled.
type Handle int

// ScheduleOneShot registers fire to run once at or after due. It
// returns a Handle usable with Cancel, or -1 if the table is full.
func (r *Registry) ScheduleOneShot(due int64, fire func(now int64)) Handle {
	return r.schedule(OneShot, due, 0, fire)
}

// SchedulePeriodic registers fire to run at due, then every interval
// nanoseconds thereafter until cancelled.
func (r *Registry) SchedulePeriodic(due, interval int64, fire func(now int64)) Handle {
	return r.schedule(Periodic, due, interval, fire)
}

func (r *Registry) schedule(kind Kind, due, interval int64, fire func(now int64)) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if !r.entries[i].inUse {
			r.entries[i] = entry{inUse: true, kind: kind, due: due, interval: interval, fire: fire}
			return Handle(i)
		}
	}
	return -1
}

// Cancel removes a previously scheduled event. Cancelling an already
// fired one-shot, or an invalid handle, is a no-op.
func (r *Registry) Cancel(h Handle) {
	if h < 0 || int(h) >= maxEvents {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[h].inUse = false
}

// NextTriggerTime implements kernel.TimeEventRegistry.
func (r *Registry) NextTriggerTime() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := int64(1<<62)
	for i := range r.entries {
		if r.entries[i].inUse && r.entries[i].due < next {
			next = r.entries[i].due
		}
	}
	return next
}

// Propagate implements kernel.TimeEventRegistry: it fires every event
// due at or before now. Periodic events are rescheduled by interval
// past their due time (never past now, so a long-overdue periodic
// event catches up to the present rather than firing a storm of
// already-past occurrences); one-shots are removed.
func (r *Registry) Propagate(now int64) {
	var due []func(int64)

	r.mu.Lock()
	for i := range r.entries {
		e := &r.entries[i]
		if !e.inUse || e.due > now {
			continue
		}
		due = append(due, e.fire)
		switch e.kind {
		case OneShot:
			e.inUse = false
		case Periodic:
			e.due += e.interval
			if e.due <= now {
				e.due = now + e.interval
			}
		}
	}
	r.mu.Unlock()

	for _, fire := range due {
		fire(now)
	}
}
