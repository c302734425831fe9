package kernel

import "runtime"

// registerDestructionGuard reports a fatal diagnostic if a TCB is
// garbage collected while its kernel is still running. Go has no
// destructors, so there is no direct equivalent of the original
// design's "thread deletion while the kernel is live is fatal" check;
// a finalizer is the closest stand-in. In normal operation this never
// fires: a Kernel holds every TCB it creates for the lifetime of the
// process, since thread deletion is out of scope (see spec Non-goals).
func registerDestructionGuard(k *Kernel, t *TCB) {
	name := t.name
	runtime.SetFinalizer(t, func(*TCB) {
		if k.shuttingDown.Load() {
			return
		}
		k.diag.Printf("fatal: thread %q destroyed while kernel is running", name)
	})
}
