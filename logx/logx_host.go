//go:build !(rp2040 || rp2350)

package logx

import "log"

type hostLogger struct{}

func newDefault() Logger { return hostLogger{} }

func (hostLogger) Printf(format string, args ...any) { log.Printf(format, args...) }
func (hostLogger) Println(args ...any)               { log.Println(args...) }
