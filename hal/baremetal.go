//go:build tinygo && baremetal

package hal

import (
	"machine"
	"runtime/interrupt"
	"time"
	"unsafe"
)

// New builds the HAL for a real microcontroller target. It wires the
// board's UART as the diagnostic logger and a hardware timer as the
// scheduler tick source.
func New() HAL {
	machine.UART0.Configure(machine.UARTConfig{BaudRate: 115200})
	return &baremetalHAL{
		platform: newBaremetalPlatform(),
		logger:   &uartLogger{uart: machine.UART0},
	}
}

type baremetalHAL struct {
	platform *baremetalPlatform
	logger   *uartLogger
}

func (h *baremetalHAL) Platform() Platform { return h.platform }
func (h *baremetalHAL) Logger() Logger     { return h.logger }

type uartLogger struct {
	uart *machine.UART
}

func (l *uartLogger) WriteLineString(s string) {
	l.uart.Write([]byte(s))
	l.uart.Write([]byte("\r\n"))
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.Write([]byte("\r\n"))
}

// baremetalContext is the bookkeeping a real context switch needs: the
// stack region and a saved stack pointer. The actual register save/
// restore is an assembly routine (__asmSaveContextAndCallScheduler /
// __asmSwitchToContext in the original design) that this pack does not
// carry; swapSP is the seam a board-specific assembly file fills in.
type baremetalContext struct {
	sp     uintptr
	fn     func()
	primed bool
}

type baremetalPlatform struct {
	timer    machine.Timer
	onFire   func()
	interval int64
}

func newBaremetalPlatform() *baremetalPlatform {
	return &baremetalPlatform{}
}

func (p *baremetalPlatform) InitContext(stackTop uintptr, trampoline func()) Context {
	return &baremetalContext{sp: stackTop, fn: trampoline}
}

// SaveAndCallScheduler and SwitchTo require a per-board assembly routine
// to save/restore the CPU register file and stack pointer; swapSP is
// that seam. Boards in this pack ship swapSP as an unimplemented stub
// (see swap_stub.go).
func (p *baremetalPlatform) SaveAndCallScheduler(self Context, schedule func() bool) {
	if schedule() {
		swapSP(self.(*baremetalContext))
	}
}

func (p *baremetalPlatform) SwitchTo(ctx Context) {
	bc := ctx.(*baremetalContext)
	if !bc.primed {
		bc.primed = true
		bc.fn()
		return
	}
	swapSP(bc)
}

func (p *baremetalPlatform) SetInterruptHandler(fn func()) { p.onFire = fn }

func (p *baremetalPlatform) Start() {
	if p.interval <= 0 {
		return
	}
	p.timer.Configure(machine.TimerConfig{
		Period: uint64(p.interval) * 1000,
	})
	p.timer.SetInterrupts(func(machine.Timer) {
		if p.onFire != nil {
			p.onFire()
		}
	})
}

func (p *baremetalPlatform) Stop() {
	p.timer.Stop()
}

func (p *baremetalPlatform) SetIntervalMicros(us int64) {
	if us < 0 {
		us = 0
	}
	p.interval = us
}

func (p *baremetalPlatform) Disable() bool {
	state := interrupt.Disable()
	return state.Enabled()
}

func (p *baremetalPlatform) Restore(wasEnabled bool) {
	interrupt.Restore(interrupt.State(wasEnabled))
}

func (p *baremetalPlatform) EnterSleepMode() {
	machine.EnterSleepMode()
}

// PartitionYield has no partition above bare metal to yield to.
func (p *baremetalPlatform) PartitionYield() {}

func (p *baremetalPlatform) Now() int64 {
	return time.Now().UnixNano()
}

func (p *baremetalPlatform) CurrentStackAddr() uintptr {
	var x byte
	return uintptr(unsafe.Pointer(&x))
}
