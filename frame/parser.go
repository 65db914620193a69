// Package frame implements the UART framing state machine (spec.md
// §4.5): a byte-at-a-time parser that assembles 6-byte command frames,
// validates their checksum and board id, and pushes accepted commands
// into a small bounded queue. It has no knowledge of opcodes -- it is
// purely a framer. Grounded on devicecode-go's line/byte UART reader
// (services/hal/internal/uartio/uart_worker.go), adapted from a
// goroutine-driven chunk reader to a pure byte-fed state machine since
// spec.md's SerialLink is interrupt-driven one byte at a time.
package frame

import "sensorhub/clock"

// SOFMarker is spec.md's SOF (§6): the sentinel that starts every frame.
const SOFMarker byte = 0xAA

// FrameLen is the fixed command frame length (spec.md §4.5, §6).
const FrameLen = 6

// FrameTimeoutMs is spec.md's FRAME_TIMEOUT (§6): the maximum gap
// between the start-of-frame byte and the frame completing.
const FrameTimeoutMs = 10

// QueueCapacity is the reference firmware's command queue depth
// (spec.md §4.5: "capacity 2 in reference"). Deliberately small: the
// dispatcher is expected to keep up, and overflow is defined to be the
// host's fault, not the board's.
const QueueCapacity = 2

// Command is one validated, framed request (spec.md §4.5/§6).
type Command struct {
	SOF      byte
	BoardID  byte
	Addr7    byte
	Cmd      byte
	Param    byte
	Checksum byte
}

type state int

const (
	waitForStart state = iota
	collecting
)

// Parser is a single-instance byte-at-a-time state machine. It is not
// safe for concurrent use from multiple goroutines feeding bytes, which
// matches the reference design: exactly one RX path feeds it.
type Parser struct {
	boardID byte
	clk     clock.Clock

	st         state
	buf        [FrameLen]byte
	pos        int
	frameStart uint32

	out chan Command
}

// NewParser returns a parser expecting frames addressed to boardID.
// Accepted commands are delivered on Commands(); the channel has
// QueueCapacity capacity and a full queue silently drops the newest
// frame (spec.md §4.5).
func NewParser(boardID byte, clk clock.Clock) *Parser {
	return &Parser{
		boardID: boardID,
		clk:     clk,
		st:      waitForStart,
		out:     make(chan Command, QueueCapacity),
	}
}

// Commands returns the channel accepted frames are pushed onto.
func (p *Parser) Commands() <-chan Command { return p.out }

// FeedByte advances the state machine by one received byte (spec.md
// §4.5). It never blocks.
func (p *Parser) FeedByte(b byte) {
	now := p.clk.NowMs()

	switch p.st {
	case waitForStart:
		if b == SOFMarker {
			p.buf[0] = b
			p.pos = 1
			p.frameStart = now
			p.st = collecting
		}
		// else: stay in WaitForStart.

	case collecting:
		if now-p.frameStart > FrameTimeoutMs {
			// Abort and drop the triggering byte too (spec.md §4.5):
			// the frame that timed out is gone; the next byte starts
			// a fresh search for SOF.
			p.reset()
			return
		}
		if p.pos >= FrameLen {
			// Overrun protection (spec.md §4.5): never happens in
			// practice since a full frame is consumed exactly at
			// pos==FrameLen below, but guards a corrupted state.
			p.reset()
			return
		}
		p.buf[p.pos] = b
		p.pos++
		if p.pos == FrameLen {
			p.validateAndEmit()
			p.reset()
		}
	}
}

// validateAndEmit checks the checksum and board id and, if both match,
// pushes the framed command (spec.md §4.5).
func (p *Parser) validateAndEmit() {
	checksum := p.buf[1] ^ p.buf[2] ^ p.buf[3] ^ p.buf[4]
	if p.buf[5] != checksum || p.buf[1] != p.boardID {
		return
	}
	cmd := Command{
		SOF:      p.buf[0],
		BoardID:  p.buf[1],
		Addr7:    p.buf[2],
		Cmd:      p.buf[3],
		Param:    p.buf[4],
		Checksum: p.buf[5],
	}
	select {
	case p.out <- cmd:
	default:
		// Queue full: the host is producing faster than the
		// dispatcher can drain (spec.md §4.5). Drop silently.
	}
}

func (p *Parser) reset() {
	p.st = waitForStart
	p.pos = 0
}
