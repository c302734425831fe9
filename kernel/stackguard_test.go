package kernel

import "testing"

func TestCheckStackGuard_IntactCanaryLeavesThreadRunnable(t *testing.T) {
	k := newTestKernel(0)
	tc := newTestTCB("t", 1, 0, 0)
	tc.stackBegin = make([]byte, 64)
	tc.stackSize = 64
	tc.paintStack()
	k.addTestThread(tc)

	k.checkStackGuard(tc)

	if tc.suspendedUntil.Load() != 0 {
		t.Fatalf("suspendedUntil = %d, want unchanged (0)", tc.suspendedUntil.Load())
	}
}

func TestCheckStackGuard_DisturbedCanaryDeactivatesThread(t *testing.T) {
	k := newTestKernel(0)
	tc := newTestTCB("t", 1, 0, 0)
	tc.stackBegin = make([]byte, 64)
	tc.stackSize = 64
	tc.paintStack()
	// Simulate the thread having run off the end of its stack and
	// clobbered the guard word at stackBegin.
	tc.stackBegin[0] = 0
	k.addTestThread(tc)

	k.checkStackGuard(tc)

	if tc.suspendedUntil.Load() != EndOfTime {
		t.Fatalf("suspendedUntil = %d, want EndOfTime (deactivated)", tc.suspendedUntil.Load())
	}
}

func TestCheckStackGuard_NilCurrentThreadIsANoOp(t *testing.T) {
	k := newTestKernel(0)
	k.checkStackGuard(nil) // must not panic
}

func TestMaxStackUsage_ReportsHighWaterMark(t *testing.T) {
	tc := newTestTCB("t", 1, 0, 0)
	tc.stackBegin = make([]byte, 64)
	tc.stackSize = 64
	tc.paintStack()

	// Disturb the top 16 bytes, as if the thread had used that much.
	for i := len(tc.stackBegin) - 16; i < len(tc.stackBegin); i++ {
		tc.stackBegin[i] = 0xAA
	}

	if got := tc.maxStackUsage(); got != 16 {
		t.Fatalf("maxStackUsage() = %d, want 16", got)
	}
}
