//go:build !tinygo

package kernel

import "sync/atomic"

// InterruptSafeInt64 is a 64-bit cell shared between thread code and the
// timer interrupt handler (C2). On hosted targets a native 64-bit atomic
// is always available, so the ISR-context accessors are identical to the
// thread-context ones; the distinction only earns its keep on targets
// where a 64-bit load/store is not naturally atomic.
type InterruptSafeInt64 struct {
	v int64
}

func newInterruptSafeInt64(v int64) InterruptSafeInt64 {
	return InterruptSafeInt64{v: v}
}

func (c *InterruptSafeInt64) Load() int64   { return atomic.LoadInt64(&c.v) }
func (c *InterruptSafeInt64) Store(v int64) { atomic.StoreInt64(&c.v, v) }

func (c *InterruptSafeInt64) LoadFromISR() int64   { return atomic.LoadInt64(&c.v) }
func (c *InterruptSafeInt64) StoreFromISR(v int64) { atomic.StoreInt64(&c.v, v) }

func (c *InterruptSafeInt64) Add(delta int64) int64 { return atomic.AddInt64(&c.v, delta) }
