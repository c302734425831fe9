//go:build !tinygo

package hal

import (
	"os"
	"runtime"
	"sync"
	"time"
)

func partitionYield() { runtime.Gosched() }

// New builds the hosted HAL used by the Linux/macOS/Windows simulator
// build. Each kernel thread runs as its own goroutine parked on a resume
// channel; at most one goroutine is ever runnable at a time, so the
// simulator faithfully exercises the scheduling logic even though it
// cannot truly preempt a thread body that never calls back into the
// kernel. Real asynchronous preemption is only available on the bare
// metal build, where the timer fires a genuine hardware interrupt.
func New() HAL {
	return &hostHAL{
		platform: newHostPlatform(),
		logger:   &hostLogger{out: os.Stdout},
	}
}

type hostHAL struct {
	platform *hostPlatform
	logger   *hostLogger
}

func (h *hostHAL) Platform() Platform { return h.platform }
func (h *hostHAL) Logger() Logger     { return h.logger }

// hostLogger serializes writes to stdout; multiple goroutines (threads)
// may log concurrently.
type hostLogger struct {
	mu  sync.Mutex
	out *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.WriteString(s)
	l.out.WriteString("\n")
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(b)
	l.out.WriteString("\n")
}

// hostContext is the per-thread saved context on the simulator: a thread
// is a parked goroutine, and "restoring" it is sending on resume.
type hostContext struct {
	resume chan struct{}
}

type hostPlatform struct {
	mu       sync.Mutex
	enabled  bool
	pending  bool
	timer    *time.Timer
	interval time.Duration
	onFire   func()
}

func newHostPlatform() *hostPlatform {
	return &hostPlatform{enabled: true}
}

func (p *hostPlatform) InitContext(stackTop uintptr, trampoline func()) Context {
	ctx := &hostContext{resume: make(chan struct{}, 1)}
	go func() {
		<-ctx.resume
		trampoline()
	}()
	return ctx
}

func (p *hostPlatform) SaveAndCallScheduler(self Context, schedule func() bool) {
	if schedule() {
		<-self.(*hostContext).resume
	}
}

func (p *hostPlatform) SwitchTo(ctx Context) {
	ctx.(*hostContext).resume <- struct{}{}
}

func (p *hostPlatform) SetInterruptHandler(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFire = fn
}

func (p *hostPlatform) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
	}
	interval := p.interval
	onFire := p.onFire
	if interval <= 0 || onFire == nil {
		p.timer = nil
		return
	}
	p.timer = time.AfterFunc(interval, p.fire)
}

// fire is the AfterFunc callback, standing in for the hardware timer's
// interrupt line. A line masked by Disable does not simply drop the
// tick the way an unmasked callback would if it silently returned: the
// real hardware would latch it and deliver it the instant the line is
// unmasked again, so fire records it as pending and Restore delivers
// it then.
func (p *hostPlatform) fire() {
	p.mu.Lock()
	if !p.enabled {
		p.pending = true
		p.mu.Unlock()
		return
	}
	handler := p.onFire
	p.mu.Unlock()
	if handler != nil {
		handler()
	}
}

func (p *hostPlatform) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *hostPlatform) SetIntervalMicros(us int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if us < 0 {
		us = 0
	}
	p.interval = time.Duration(us) * time.Microsecond
}

func (p *hostPlatform) Disable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	was := p.enabled
	p.enabled = false
	return was
}

func (p *hostPlatform) Restore(wasEnabled bool) {
	p.mu.Lock()
	p.enabled = wasEnabled
	deliver := wasEnabled && p.pending
	if deliver {
		p.pending = false
	}
	handler := p.onFire
	p.mu.Unlock()

	if deliver && handler != nil {
		handler()
	}
}

// EnterSleepMode has nothing useful to do on a host process: blocking the
// OS thread would also block every other goroutine in the simulator, so
// this is a no-op: on this build the idle thread does not sleep, it
// keeps looping, handing the OS thread to the Go runtime once per pass
// via PartitionYield.
func (p *hostPlatform) EnterSleepMode() {}

// PartitionYield hands the OS thread back to the Go runtime scheduler,
// mirroring the teacher's own use of runtime.Gosched for the same
// purpose.
func (p *hostPlatform) PartitionYield() {
	partitionYield()
}

func (p *hostPlatform) Now() int64 {
	return time.Now().UnixNano()
}

// CurrentStackAddr returns 0 ("not tracked"). A thread on this build
// runs on its goroutine's own movable, growable stack, not inside the
// TCB's stack region, so no address it could report is comparable with
// that region; returning 0 disables the stack guard's margin check
// here, and only the canary check applies.
func (p *hostPlatform) CurrentStackAddr() uintptr {
	return 0
}
