//go:build tinygo && baremetal

package kernel

import "runtime/interrupt"

// InterruptSafeInt64 is a 64-bit cell shared between thread code and the
// timer interrupt handler (C2). Targets on this build do not guarantee
// an atomic 64-bit load/store, so thread-context access masks
// interrupts for the duration of the access. The FromISR accessors skip
// masking: they are only safe to call from inside the handler, where
// the interrupt is already disabled, and exist to avoid the
// (potentially deadlocking) cost of re-masking on the scheduler's hot
// path.
type InterruptSafeInt64 struct {
	v int64
}

func newInterruptSafeInt64(v int64) InterruptSafeInt64 {
	return InterruptSafeInt64{v: v}
}

func (c *InterruptSafeInt64) Load() int64 {
	state := interrupt.Disable()
	v := c.v
	interrupt.Restore(state)
	return v
}

func (c *InterruptSafeInt64) Store(v int64) {
	state := interrupt.Disable()
	c.v = v
	interrupt.Restore(state)
}

func (c *InterruptSafeInt64) LoadFromISR() int64 { return c.v }

func (c *InterruptSafeInt64) StoreFromISR(v int64) { c.v = v }

func (c *InterruptSafeInt64) Add(delta int64) int64 {
	state := interrupt.Disable()
	c.v += delta
	v := c.v
	interrupt.Restore(state)
	return v
}
