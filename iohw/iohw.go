// Package iohw declares the two hardware capabilities this firmware
// treats as external collaborators: a byte-oriented I2C bus and a
// byte-at-a-time serial link. Concrete hardware bring-up is out of
// scope; this package only fixes the interface shape, adapting
// tinygo.org/x/drivers.I2C the way a HAL's adaptor-layer core types
// wrap a vendor driver interface behind a narrow project-owned one.
package iohw

import (
	"time"

	tgodrivers "tinygo.org/x/drivers"
)

// I2CBus is the bus capability drivers are handed at init. A timeout of 0
// means "use the implementation's default".
//
// I2CBus is intentionally a narrower interface than tinygo.org/x/drivers.I2C
// (Tx(addr uint16, w, r []byte) error) so the same driver code runs against
// real silicon, via the Adapter below, and against the host fake.
type I2CBus interface {
	// WriteRead performs w then r in a single transaction when both are
	// non-empty (repeated start), matching the register read idiom used
	// throughout drivers/ina219. Either may be empty for a pure write or
	// pure read.
	WriteRead(addr7 byte, w, r []byte, timeout time.Duration) error
}

// Adapter wraps a tinygo.org/x/drivers.I2C as an iohw.I2CBus. The timeout
// parameter is accepted for interface conformance; the tinygo driver layer
// does not expose per-transaction timeouts, and this adapter enforces none.
type Adapter struct {
	Bus tgodrivers.I2C
}

func (a Adapter) WriteRead(addr7 byte, w, r []byte, _ time.Duration) error {
	return a.Bus.Tx(uint16(addr7), w, r)
}

// SerialLink is the byte-oriented command channel the board is addressed
// over (spec.md §1, §6). RecvByte blocks until one byte is available or
// the context/deadline passes; Send is a blocking frame write.
type SerialLink interface {
	RecvByte(deadline time.Time) (b byte, ok bool)
	Send(frame []byte) error
}
