// Package syncprim implements blocking synchronization primitives on
// top of the kernel's suspend/resume protocol: a counting semaphore and
// a small fixed-capacity mailbox, in the style of the higher-level
// primitives a scheduler core like this one is meant to support but
// does not itself define.
package syncprim

import "nanokernel/kernel"

// Semaphore is a counting semaphore. Waiters block via
// kernel.SuspendCallerUntil and are woken, highest priority first, by
// Release.
type Semaphore struct {
	k     *kernel.Kernel
	count int
}

// NewSemaphore constructs a semaphore with the given initial count.
func NewSemaphore(k *kernel.Kernel, initial int) *Semaphore {
	return &Semaphore{k: k, count: initial}
}

// Acquire blocks until the semaphore's count is positive, then
// decrements it. deadline is the latest time (on the kernel's clock) to
// wait; pass kernel.EndOfTime to wait forever. It reports whether the
// count was actually acquired.
func (s *Semaphore) Acquire(deadline int64) bool {
	for {
		if s.count > 0 {
			s.count--
			return true
		}
		if !s.k.SuspendCallerUntil(deadline, s) {
			return false
		}
	}
}

// Release increments the count and wakes the highest-priority waiter,
// if any.
func (s *Semaphore) Release() {
	s.count++
	if next := s.k.FindNextWaitingFor(s); next != nil {
		s.k.Resume(next)
	}
}
