//go:build windows

package shutdown

import (
	"os"
	"syscall"
)

// SIGTERM is never delivered by Windows itself, but Go accepts it and
// some service wrappers emulate it.
var defaultSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var signalNames = map[string]os.Signal{
	"INT":  os.Interrupt,
	"TERM": syscall.SIGTERM,
}
