//go:build tinygo && baremetal

package hal

// swapSP performs the actual register-file save and stack-pointer swap
// for a context switch. This pack does not carry the per-board assembly
// routine (__asmSaveContextAndCallScheduler / __asmSwitchToContext in
// the original design); a real board port supplies it in a
// board-specific .s file and wires it in here via a //go:linkname or a
// cgo stub.
func swapSP(ctx *baremetalContext) {
	panic("hal: swapSP not implemented for this board")
}
