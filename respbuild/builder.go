// Package respbuild builds response frames (spec.md §4.7). Every builder
// is a pure function: no I/O, no allocation beyond what the caller's
// buffer provides, returning the total number of bytes written or 0 on
// error. Grounded on the reference firmware's response_builder.c
// shape, kept as plain functions the way devicecode-go's codec helpers
// (drivers/ltc4015/codec.go) are -- small, allocation-free encode/decode
// pairs rather than a stateful builder type.
package respbuild

import (
	"sensorhub/errcode"
	"sensorhub/sensor"
)

// SOFMarker mirrors frame.SOFMarker; duplicated here (rather than
// imported) to keep respbuild free of any parser dependency -- it only
// ever emits frames, never reads them.
const SOFMarker byte = 0xAA

// Status codes (spec.md §4.6).
const (
	StatusOK         byte = 0
	StatusError      byte = 1
	StatusNotFound   byte = 2
	StatusUnknownCmd byte = 3
)

// HeaderLen is SOF+board_id+addr7+cmd+status+length (spec.md §4.7).
const HeaderLen = 6

// StatusForCode maps an errcode.Code to the wire status byte every
// per-sensor opcode other than READ_SAMPLES answers with (spec.md §4.8:
// "STATUS(ERROR) for most other per-sensor opcodes"). errcode.NotFound
// therefore folds into the default StatusError case here -- the one
// legitimate STATUS(NOT_FOUND), READ_SAMPLES against a missing addr7, is
// written directly by dispatch.handleReadSamples without going through
// this function.
func StatusForCode(c errcode.Code) byte {
	switch c {
	case errcode.OK:
		return StatusOK
	case errcode.UnknownCommand:
		return StatusUnknownCmd
	default:
		return StatusError
	}
}

// checksum XORs bytes[1:] -- everything after SOF, which callers pass
// as the header-plus-payload slice with the checksum slot still empty.
func checksum(b []byte) byte {
	var c byte
	for _, x := range b[1:] {
		c ^= x
	}
	return c
}

// writeHeader writes the common SOF..length prefix at buf[0:HeaderLen].
func writeHeader(buf []byte, boardID, addr7, cmd, status byte, length int) {
	buf[0] = SOFMarker
	buf[1] = boardID
	buf[2] = addr7
	buf[3] = cmd
	buf[4] = status
	buf[5] = byte(length)
}

// Status builds a zero-payload frame. buf must hold at least
// HeaderLen+1 bytes.
func Status(buf []byte, boardID, addr7, cmd, status byte) int {
	const total = HeaderLen + 1
	if len(buf) < total {
		return 0
	}
	writeHeader(buf, boardID, addr7, cmd, status, 0)
	buf[HeaderLen] = checksum(buf[:HeaderLen])
	return total
}

// Field builds a 1-byte payload frame.
func Field(buf []byte, boardID, addr7, cmd, status, value byte) int {
	const total = HeaderLen + 1 + 1
	if len(buf) < total {
		return 0
	}
	writeHeader(buf, boardID, addr7, cmd, status, 1)
	buf[HeaderLen] = value
	buf[HeaderLen+1] = checksum(buf[:HeaderLen+1])
	return total
}

// Payload builds a generic N-byte payload frame, 0 < N <= 255 (spec.md
// §4.7).
func Payload(buf []byte, boardID, addr7, cmd, status byte, payload []byte) int {
	n := len(payload)
	if n == 0 || n > 255 {
		return 0
	}
	total := HeaderLen + n + 1
	if len(buf) < total {
		return 0
	}
	writeHeader(buf, boardID, addr7, cmd, status, n)
	copy(buf[HeaderLen:HeaderLen+n], payload)
	buf[HeaderLen+n] = checksum(buf[:HeaderLen+n])
	return total
}

// List builds a LIST frame: pairs of (type_code, addr7), 2*count bytes
// of payload (spec.md §4.7). Errors if count==0 or count exceeds
// maxSensors.
func List(buf []byte, boardID, addr7, cmd, status byte, pairs [][2]byte, maxSensors int) int {
	count := len(pairs)
	if count == 0 || count > maxSensors {
		return 0
	}
	n := 2 * count
	total := HeaderLen + n + 1
	if len(buf) < total {
		return 0
	}
	writeHeader(buf, boardID, addr7, cmd, status, n)
	for i, p := range pairs {
		buf[HeaderLen+2*i] = p[0]
		buf[HeaderLen+2*i+1] = p[1]
	}
	buf[HeaderLen+n] = checksum(buf[:HeaderLen+n])
	return total
}

// Samples builds a SAMPLES frame: each sample contributes a big-endian
// 32-bit tick followed by its payload bytes (spec.md §4.7). Errors if
// the resulting length exceeds 255 (the single-byte length field) or
// any sample's length exceeds sampleSize.
func Samples(buf []byte, boardID, addr7, cmd, status byte, samples []sensor.Sample, sampleSize int) int {
	n := 0
	for _, s := range samples {
		if int(s.Len) > sampleSize {
			return 0
		}
		n += 4 + int(s.Len)
	}
	if n > 255 {
		return 0
	}
	total := HeaderLen + n + 1
	if len(buf) < total {
		return 0
	}
	writeHeader(buf, boardID, addr7, cmd, status, n)
	off := HeaderLen
	for _, s := range samples {
		buf[off] = byte(s.TickMs >> 24)
		buf[off+1] = byte(s.TickMs >> 16)
		buf[off+2] = byte(s.TickMs >> 8)
		buf[off+3] = byte(s.TickMs)
		off += 4
		copy(buf[off:off+int(s.Len)], s.Payload())
		off += int(s.Len)
	}
	buf[off] = checksum(buf[:off])
	return total
}
