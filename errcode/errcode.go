package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable). These are the error kinds from spec §7;
// the dispatcher maps each to a wire status byte (see respbuild.StatusForCode).
// Protocol (bad checksum / wrong board id) is deliberately not a Code here:
// the frame parser discards those bytes before a Command ever exists, so
// there is never a response to map a status byte onto (spec.md §4.8).
const (
	OK Code = "ok"

	NotFound       Code = "not_found"       // unknown addr7 or unknown field id
	BusError       Code = "bus_error"       // I2C NAK / transaction timeout
	Busy           Code = "busy"            // no capacity to add a sensor (roster full)
	UnknownCommand Code = "unknown_command" // opcode not recognised by the dispatcher

	Error Code = "error" // generic fallback
)

// MapDriverErr maps a low-level driver/I2C error to a Code. Drivers return
// plain errors (e.g. from an I2C Tx); callers that only need to log or
// classify the failure use this instead of inspecting the error directly.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	return BusError
}
