// Package app wires the scheduling core to a concrete hardware
// abstraction layer and a small set of demonstration threads: a
// periodic blinker, and a producer/consumer pair exercising the
// mailbox primitive. It exists to give the core something real to run,
// the same role the teacher's own app package plays for its IPC kernel.
package app

import (
	"context"

	"nanokernel/hal"
	"nanokernel/kernel"
	"nanokernel/syncprim"
	"nanokernel/timeevent"
)

// Config selects which demonstration threads to register.
type Config struct {
	// BlinkPeriodMicros is the blink thread's period. Zero disables it.
	BlinkPeriodMicros int64
}

// DefaultConfig enables the blink demo at a human-visible rate.
func DefaultConfig() Config {
	return Config{BlinkPeriodMicros: 500_000}
}

// System owns the kernel instance and every collaborator it was built
// with.
type System struct {
	k      *kernel.Kernel
	events *timeevent.Registry
}

// New constructs a System against the process's native HAL (host or
// bare metal, selected by build tag in the hal package) using
// DefaultConfig.
func New() *System { return NewWithConfig(DefaultConfig()) }

// NewWithConfig constructs a System with an explicit demo configuration.
func NewWithConfig(cfg Config) *System {
	return newSystem(hal.New(), cfg)
}

func newSystem(h hal.HAL, cfg Config) *System {
	events := &timeevent.Registry{}
	diag := kernel.NewHALDiagnostics(h.Logger())
	k := kernel.New(h.Platform(), kernel.DefaultConfig(), diag, events)

	mbox := syncprim.NewMailbox(k)

	k.AddThread("producer", 10, 2048, &producerThread{k: k, mbox: mbox})
	k.AddThread("consumer", 10, 2048, &consumerThread{k: k, mbox: mbox, diag: diag})

	if cfg.BlinkPeriodMicros > 0 {
		k.AddThread("blink", 5, 1024, &blinkThread{k: k, diag: diag, periodNanos: cfg.BlinkPeriodMicros * 1000})
	}

	return &System{k: k, events: events}
}

// Run starts the kernel; it blocks until ctx is cancelled.
func (s *System) Run(ctx context.Context) error {
	return s.k.Run(ctx)
}

// Kernel exposes the underlying kernel instance for tooling (tests,
// diagnostics commands) that need direct access.
func (s *System) Kernel() *kernel.Kernel { return s.k }

type blinkThread struct {
	k           *kernel.Kernel
	diag        kernel.Diagnostics
	periodNanos int64
}

func (b *blinkThread) Run() {
	for {
		b.diag.Printf("blink")
		b.k.SuspendCallerUntil(b.k.Now()+b.periodNanos, nil)
	}
}

type producerThread struct {
	k    *kernel.Kernel
	mbox *syncprim.Mailbox
	seq  int
}

func (p *producerThread) Run() {
	for {
		p.seq++
		p.mbox.Send(p.seq, kernel.EndOfTime)
		p.k.SuspendCallerUntil(p.k.Now()+200_000_000, nil)
	}
}

type consumerThread struct {
	k    *kernel.Kernel
	mbox *syncprim.Mailbox
	diag kernel.Diagnostics
}

func (c *consumerThread) Run() {
	for {
		msg, ok := c.mbox.Recv(kernel.EndOfTime)
		if !ok {
			continue
		}
		c.diag.Printf("consumed %v", msg)
	}
}
