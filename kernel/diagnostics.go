package kernel

import (
	"fmt"

	"nanokernel/hal"
)

// Diagnostics is the core's only output path: boot banners, stack
// overflow reports, the occasional fatal condition. It is intentionally
// narrower than hal.Logger so tests can supply a trivial fake without
// pulling in any platform.
type Diagnostics interface {
	Printf(format string, args ...any)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Printf(string, ...any) {}

// NewHALDiagnostics adapts a hal.Logger into a Diagnostics sink.
func NewHALDiagnostics(log hal.Logger) Diagnostics {
	return &halDiagnostics{log: log}
}

type halDiagnostics struct {
	log hal.Logger
}

func (h *halDiagnostics) Printf(format string, args ...any) {
	if h.log == nil {
		return
	}
	h.log.WriteLineString(fmt.Sprintf(format, args...))
}
