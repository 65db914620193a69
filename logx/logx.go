// Package logx is the firmware's ambient logger. It mirrors the way
// devicecode-go keeps formatting out of the hot path on MCU builds
// (see x/fmtx) while giving host builds and tests a normal, timestamped
// log line. Call sites never format a string themselves; they pass
// key/value-ish parts to Printf/Println and let the active build decide
// how (or whether) to render them.
package logx

// Logger is the minimal surface the dispatcher, manager and tasks log
// through. Exactly one concrete implementation is linked in per build
// (see logx_host.go / logx_mcu.go).
type Logger interface {
	Printf(format string, args ...any)
	Println(args ...any)
}

// Default is the process-wide logger. board.Run and cmd/* may replace it
// (e.g. to redirect MCU logs to a spare UART), but every package in this
// module logs through Default rather than taking a Logger dependency,
// the way devicecode-go's main.go uses a single package-level `log`.
var Default Logger = newDefault()

func Printf(format string, args ...any) { Default.Printf(format, args...) }
func Println(args ...any)               { Default.Println(args...) }
