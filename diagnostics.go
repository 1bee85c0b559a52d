package vscroll

import (
	"fmt"
	"log/slog"
	"os"
)

// debugChecks controls whether contract violations panic instead of being
// logged and recovered from. It is enabled by the VSCROLL_DEBUG environment
// variable so test runs and debug sessions fail fast while production
// builds self-heal.
var debugChecks = os.Getenv("VSCROLL_DEBUG") != ""

// SetDebugChecks overrides the VSCROLL_DEBUG environment setting.
func SetDebugChecks(on bool) {
	debugChecks = on
}

// violation reports a broken API contract: a warning in normal operation, a
// panic when debug checks are enabled. Callers perform their documented
// recovery after reporting, so release builds keep the viewport stable even
// when the driver misbehaves.
func (v *VirtualScroll) violation(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if debugChecks {
		panic("vscroll: " + msg)
	}
	v.log().Warn("vscroll: contract violation", "detail", msg)
}

// warn logs a recoverable oddity that is not a caller bug, such as a driver
// materializing fewer items than requested.
func (v *VirtualScroll) warn(msg string, args ...any) {
	v.log().Warn("vscroll: "+msg, args...)
}

func (v *VirtualScroll) log() *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return slog.Default()
}
