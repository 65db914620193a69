//go:build rp2040 || rp2350

package logx

import (
	"sensorhub/x/fmtx"
)

// mcuLogger writes through fmtx, which in turn targets fmtx.DefaultOutput
// (a UART writer set by platform bootstrap) instead of pulling in the
// standard "fmt"/"log" packages.
type mcuLogger struct{}

func newDefault() Logger { return mcuLogger{} }

func (mcuLogger) Printf(format string, args ...any) {
	fmtx.Printf(format, args...)
	fmtx.Print("\n")
}

func (mcuLogger) Println(args ...any) {
	fmtx.Print(args...)
	fmtx.Print("\n")
}
