// Command hubsim is a host-runnable simulation of one hub node: a fake
// I2C bus standing in for an INA219, a fake serial link, and a line REPL
// that tokenizes commands with shlex and feeds the resulting wire frames
// into the fake link the board's FrameParser reads from. Grounded on
// devicecode-go's cmd/uart-test smoke-test style (build a frame, push
// it, inspect what comes back) adapted from a bus-message harness to a
// byte-wire harness.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/shlex"

	"sensorhub/board"
	"sensorhub/boardcfg"
	"sensorhub/clock"
	"sensorhub/frame"
	"sensorhub/iohw"
)

func main() {
	cfg := boardcfg.Default()
	bus := iohw.NewFakeBus()
	link := iohw.NewFakeSerial()
	clk := clock.NewFake()

	b := board.New(cfg, bus, link, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	fmt.Println("hubsim ready. commands: ping | add <addr7> <type> | remove <addr7> | list | read <addr7> | raw <hex...> | tick <ms> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		args, err := shlex.Split(line)
		if err != nil || len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit":
			return

		case "tick":
			if len(args) < 2 {
				fmt.Println("usage: tick <ms>")
				continue
			}
			ms, err := strconv.Atoi(args[1])
			if err != nil {
				fmt.Println("bad duration:", err)
				continue
			}
			clk.Advance(time.Duration(ms) * time.Millisecond)

		case "ping":
			inject(link, cfg.BoardID, 0, 3, 0)

		case "add":
			if len(args) < 3 {
				fmt.Println("usage: add <addr7> <type>  (polls at the driver's default period)")
				continue
			}
			addr7 := parseByte(args[1])
			typeCode := parseByte(args[2])
			inject(link, cfg.BoardID, addr7, 1, typeCode)

		case "remove":
			if len(args) < 2 {
				fmt.Println("usage: remove <addr7>")
				continue
			}
			inject(link, cfg.BoardID, parseByte(args[1]), 2, 0)

		case "list":
			inject(link, cfg.BoardID, 0, 4, 0)

		case "read":
			if len(args) < 2 {
				fmt.Println("usage: read <addr7>")
				continue
			}
			inject(link, cfg.BoardID, parseByte(args[1]), 0, 0)

		case "raw":
			var bs []byte
			for _, a := range args[1:] {
				bs = append(bs, parseByte(a))
			}
			link.Feed(bs)

		default:
			fmt.Println("unknown command:", args[0])
			continue
		}

		drainResponses(link)
	}
}

func inject(link *iohw.FakeSerial, boardID, addr7, cmd, param byte) {
	checksum := boardID ^ addr7 ^ cmd ^ param
	link.Feed([]byte{frame.SOFMarker, boardID, addr7, cmd, param, checksum})
}

func drainResponses(link *iohw.FakeSerial) {
	for _, f := range link.Sent() {
		fmt.Printf("<- % x\n", f)
	}
	link.ResetSent()
}

func parseByte(s string) byte {
	n, _ := strconv.ParseUint(s, 0, 8)
	return byte(n)
}
