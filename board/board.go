// Package board wires the CORE engine together into one runnable node:
// a driver Registry, a SensorManager, a FrameParser fed by a SerialLink,
// and a CommandDispatcher (spec.md §2's data-flow diagram). Grounded on
// devicecode-go's services/hal/hal.go Run entry point: a single
// constructor plus a blocking Run loop, context-cancellable.
package board

import (
	"context"
	"sync"
	"time"

	"sensorhub/boardcfg"
	"sensorhub/clock"
	"sensorhub/dispatch"
	"sensorhub/drivers"
	"sensorhub/drivers/ina219"
	"sensorhub/errcode"
	"sensorhub/frame"
	"sensorhub/iohw"
	"sensorhub/logx"
	"sensorhub/sensor"
)

// recvPollInterval bounds how long pumpSerial's blocking RecvByte call
// waits before re-checking ctx, so shutdown is never stuck on a dead
// link.
const recvPollInterval = 100 * time.Millisecond

// Board owns every long-lived CORE component for one hub node.
type Board struct {
	cfg    boardcfg.Config
	clk    clock.Clock
	parser *frame.Parser
	mgr    *sensor.Manager
	disp   *dispatch.Dispatcher
	link   iohw.SerialLink
}

// New wires a Board from its configuration and hardware capabilities.
// Every built-in driver is registered here; out-of-tree drivers would
// call registry.Register before New if this were a larger build.
func New(cfg boardcfg.Config, bus iohw.I2CBus, link iohw.SerialLink, clk clock.Clock) *Board {
	registry := drivers.NewRegistry()
	registry.Register(ina219.Info)

	busMu := &sync.Mutex{}
	mgr := sensor.NewManager(bus, busMu, clk, registry)
	parser := frame.NewParser(cfg.BoardID, clk)
	disp := dispatch.New(cfg.BoardID, mgr, link)

	return &Board{cfg: cfg, clk: clk, parser: parser, mgr: mgr, disp: disp, link: link}
}

// Run provisions the configured sensors, starts the dispatcher, and
// pumps bytes from the serial link into the parser until ctx is
// cancelled. It blocks until shutdown.
func (b *Board) Run(ctx context.Context) {
	for _, s := range b.cfg.Sensors {
		if code := b.mgr.Add(s.TypeCode, s.Addr7, s.PeriodMs); code != errcode.OK {
			logx.Printf("board: pre-provisioned sensor addr7=0x%02x type=%d failed: %v", s.Addr7, s.TypeCode, code)
		}
	}

	go b.disp.Run(b.parser.Commands())

	b.pumpSerial(ctx)
	b.mgr.Destroy()
}

// pumpSerial reads one byte at a time from the link, feeding the
// parser, until ctx is cancelled (spec.md §5: "the parser never
// suspends; on queue-full it discards" -- RecvByte's own deadline is
// how it yields control back to check ctx).
func (b *Board) pumpSerial(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		byt, ok := b.link.RecvByte(time.Now().Add(recvPollInterval))
		if !ok {
			continue
		}
		b.parser.FeedByte(byt)
	}
}

// Manager exposes the SensorManager for out-of-band callers (tests,
// cmd/hubsim's REPL).
func (b *Board) Manager() *sensor.Manager { return b.mgr }
