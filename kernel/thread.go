package kernel

import (
	"encoding/binary"
	"unsafe"

	"nanokernel/hal"
)

// stackCanary is painted across every thread's stack region at
// construction time. A schedule boundary that finds the low word
// disturbed treats the thread as having run off the end of its stack.
const stackCanary uint32 = 0xDEADBEEF

const minStackSize = 1024

// Thread is user code the scheduler runs cooperatively. Run is invoked
// once; when it returns, the thread retires and never runs again.
type Thread interface {
	Run()
}

// Signaler is an opaque, comparable token identifying a synchronization
// object (a semaphore, a mailbox). The scheduler only ever compares it
// for equality; it never dereferences it.
type Signaler = any

// TCB is a thread control block: the scheduler's entire view of a
// thread. Its fields are only ever mutated by the owning Kernel.
type TCB struct {
	name     string
	priority int32

	stackBegin []byte
	stackSize  int
	context    hal.Context

	suspendedUntil InterruptSafeInt64
	lastActivation InterruptSafeInt64
	waitingFor     Signaler

	thread Thread
}

// Name reports the thread's name, set at AddThread time.
func (t *TCB) Name() string { return t.name }

// Priority reports the thread's current priority, which only ever
// changes transiently under PriorityCeilerInScope.
func (t *TCB) Priority() int32 { return t.priority }

func (t *TCB) paintStack() {
	for i := 0; i+4 <= len(t.stackBegin); i += 4 {
		binary.LittleEndian.PutUint32(t.stackBegin[i:i+4], stackCanary)
	}
}

func (t *TCB) canaryIntact() bool {
	if len(t.stackBegin) < 4 {
		return true
	}
	return binary.LittleEndian.Uint32(t.stackBegin[:4]) == stackCanary
}

func (t *TCB) stackBeginAddr() uintptr {
	if len(t.stackBegin) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&t.stackBegin[0]))
}

func (t *TCB) stackTopAddr() uintptr {
	if len(t.stackBegin) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&t.stackBegin[len(t.stackBegin)-1]))
}

// maxStackUsage scans up from the low end of the stack region (the
// stack grows down towards it), counting words that still hold the
// canary, and reports how many bytes above that point have actually
// been touched. It mirrors a debugger's "high water mark" stack usage
// report; it is not free to call from a hot path since it walks the
// whole region in the worst case.
func (t *TCB) maxStackUsage() int {
	buf := t.stackBegin
	free := 0
	for i := 0; i+4 <= len(buf); i += 4 {
		if binary.LittleEndian.Uint32(buf[i:i+4]) != stackCanary {
			break
		}
		free += 4
	}
	return t.stackSize - free
}
