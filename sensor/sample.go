// Package sensor implements the CORE engine of the sensor hub: the
// bounded per-sensor sample queue, the periodic polling task, and the
// roster manager (spec.md §3, §4.2-§4.4).
package sensor

import "sensorhub/drivers"

// Sample is one timestamped driver reading (spec.md §3). Len is the
// number of valid bytes in Bytes; the rest is unused backing storage so
// Sample can be copied by value without an allocation.
type Sample struct {
	TickMs uint32
	Len    uint8
	Bytes  [drivers.MaxPayload]byte
}

// Payload returns the valid portion of Bytes.
func (s Sample) Payload() []byte { return s.Bytes[:s.Len] }
