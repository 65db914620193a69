// Package drivers defines the sensor driver plug-in model (spec.md §3,
// §4.1): a v-table (Driver) plus static metadata and a constructor
// (Info), looked up by type code through a process-wide Registry
// populated at boot. The shape mirrors devicecode-go's Builder/Device
// split (services/hal/internal/core/types.go) generalised to a v-table
// dispatched across the per-sensor worker boundary, the way the original
// firmware's SensorDriverInfo_t/SensorDriver_t pair works
// (driver_registry.h).
package drivers

import (
	"time"

	"sensorhub/iohw"
)

// MaxPayload bounds a single Sample's byte length (spec.md §3). The
// reference INA219 driver's worst case is 8 bytes (bus voltage + shunt
// voltage + current + power, each 2 bytes); 10 leaves headroom for
// future drivers.
const MaxPayload = 10

// Driver is the per-sensor operation v-table. Exactly one Context value
// backs each call; a Driver implementation must not hold hidden state
// outside the Context it is handed, since multiple sensors of the same
// type_code share one Driver singleton (see Info.NewContext).
type Driver interface {
	// Init performs any first-contact I2C setup (e.g. writing a
	// calibration register). Called exactly once, under the bus mutex,
	// as the first action of the owning SensorTask (spec.md §4.3).
	Init(ctx Context, bus iohw.I2CBus, addr7 byte) error

	// Read acquires one sample into out, returning the number of bytes
	// written. Called under the bus mutex on every poll tick.
	Read(ctx Context, bus iohw.I2CBus, addr7 byte, out []byte) (n int, err error)

	// SampleSize reports the current payload size for ctx. This is a
	// function of context, not a compile-time constant, because a
	// driver's payload mask may select a subset of fields at runtime
	// (spec.md §3).
	SampleSize(ctx Context) int

	// Configure applies a driver-local field write (gain, range,
	// calibration, payload mask, ...). The bus write, if any, happens
	// here; the manager is responsible for holding the bus mutex around
	// this call (spec.md §9 fixes the reference firmware's omission).
	Configure(ctx Context, bus iohw.I2CBus, addr7 byte, fieldID byte, param byte) (ok bool)

	// ReadConfigBytes encodes fieldID's current value into out,
	// returning the number of bytes written (1-4, spec.md §4.4) and
	// whether fieldID was recognised.
	ReadConfigBytes(ctx Context, fieldID byte, out []byte) (n int, ok bool)

	// ListFieldIDs enumerates every field GET_CONFIG should concatenate
	// (spec.md §4.6, opcode GET_CONFIG).
	ListFieldIDs() []byte
}

// Context is the opaque per-sensor driver state. The reference firmware
// uses a void* + ctx_size pair (spec.md §9); the Go rewrite uses a plain
// interface value owned exclusively by its SensorEntry, which is the
// type-safe equivalent the spec's design notes recommend.
type Context interface{}

// Info is the immutable, registry-resident metadata for one driver type
// (spec.md's DriverInfo, §3). NewContext constructs a fresh Context for
// one sensor instance; ctx_size disappears because Go contexts own their
// memory.
type Info struct {
	TypeCode byte
	Name     string

	// NewContext allocates a zero-value Context for one sensor instance.
	NewContext func() Context

	// Driver returns the (stateless, shared) v-table for this type.
	Driver func() Driver

	// DefaultPeriod is used by CMD_ADD_SENSOR when the command frame
	// carries no explicit period (spec.md §4.6), falling back to
	// DefaultPollPeriod if zero.
	DefaultPeriod time.Duration
}

// DefaultPollPeriod is spec.md's DEFAULT_POLL fallback (§6).
const DefaultPollPeriod = 500 * time.Millisecond

// DefaultPeriodOrFallback returns DefaultPeriod, substituting
// DefaultPollPeriod when the driver declares none.
func (i Info) DefaultPeriodOrFallback() time.Duration {
	if i.DefaultPeriod > 0 {
		return i.DefaultPeriod
	}
	return DefaultPollPeriod
}
