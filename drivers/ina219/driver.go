package ina219

import (
	"time"

	"sensorhub/drivers"
	"sensorhub/iohw"
)

// TypeCode is spec.md's SENSOR_TYPE_INA219 (original_source's
// protocol.h: SENSOR_TYPE_INA219=1).
const TypeCode byte = 1

// Payload mask bits select which fields Read emits, in this fixed order
// (original_source's ina219_driver.c: rd()).
const (
	BitBusVoltage   byte = 1 << 0
	BitShuntVoltage byte = 1 << 1
	BitCurrent      byte = 1 << 2
	BitPower        byte = 1 << 3

	DefaultPayloadMask = BitBusVoltage | BitShuntVoltage
)

// Field ids. SetPayloadMask/GetPayloadMask reuse the dispatcher's own
// opcodes 5/6 (spec.md §4.6) since the manager passes cmd.Cmd straight
// through as field_id for that pair. Gain/range/calibration are
// supplemented from original_source (its CMD_SET_GAIN/RANGE/CAL at 5/6/7
// and CMD_GET_GAIN/RANGE/CAL at 11/12/13, which collide with spec.md's
// own opcode numbering) by giving them fresh slots inside spec.md's
// generic 20-29/30-39 SET/GET ranges instead.
const (
	FieldSetPayloadMask = 5
	FieldGetPayloadMask = 6

	FieldSetPeriod byte = 20 // no register write; tracked by Manager itself.
	FieldSetGain   byte = 21
	FieldSetRange  byte = 22
	FieldSetCal    byte = 23

	FieldGetPeriod byte = 30 // intercepted by sensor.Manager, never reaches here.
	FieldGetGain   byte = 31
	FieldGetRange  byte = 32
	FieldGetCal    byte = 33
)

// Context is one sensor instance's cached configuration. Init and Read
// run on the sensor's own task goroutine; Configure, ReadConfigBytes and
// SampleSize run on the CommandDispatcher's. Every call except SampleSize
// is made with the bus mutex held, so SampleSize's read of payloadMask is
// not ordered against Init's write -- the same unsynchronised access the
// reference firmware has between its CommandTask and SensorTask.
type Context struct {
	gain        byte
	busRange    byte
	calibration uint16
	payloadMask byte
}

// NewContext satisfies drivers.Info.NewContext.
func NewContext() drivers.Context { return &Context{} }

// Driver is the stateless INA219 v-table singleton.
type Driver struct{}

var singleton = Driver{}

// GetDriver satisfies drivers.Info.Driver.
func GetDriver() drivers.Driver { return singleton }

func ctxOf(c drivers.Context) *Context { return c.(*Context) }

// Init applies the driver's defaults (spec.md §4.3: called once under
// the bus mutex as the SensorTask's first action).
func (Driver) Init(c drivers.Context, bus iohw.I2CBus, addr7 byte) error {
	ctx := ctxOf(c)
	ctx.gain = 0
	ctx.busRange = 0
	ctx.calibration = 4096
	ctx.payloadMask = DefaultPayloadMask

	if err := SetGain(bus, addr7, ctx.gain); err != nil {
		return err
	}
	if err := SetBusRange(bus, addr7, ctx.busRange); err != nil {
		return err
	}
	return SetCalibration(bus, addr7, ctx.calibration)
}

// Read acquires one sample per the current payload mask, in fixed field
// order bus-voltage, shunt-voltage, current, power -- each a big-endian
// 16-bit value (original_source's ina219_driver.c: rd()).
func (Driver) Read(c drivers.Context, bus iohw.I2CBus, addr7 byte, out []byte) (int, error) {
	ctx := ctxOf(c)
	n := 0
	put := func(v uint16) {
		out[n] = byte(v >> 8)
		out[n+1] = byte(v)
		n += 2
	}

	if ctx.payloadMask&BitBusVoltage != 0 {
		v, err := ReadBusVoltageMv(bus, addr7)
		if err != nil {
			return 0, err
		}
		put(v)
	}
	if ctx.payloadMask&BitShuntVoltage != 0 {
		v, err := ReadShuntVoltageUv(bus, addr7)
		if err != nil {
			return 0, err
		}
		put(uint16(v))
	}
	if ctx.payloadMask&BitCurrent != 0 {
		v, err := ReadCurrentUa(bus, addr7)
		if err != nil {
			return 0, err
		}
		put(uint16(v))
	}
	if ctx.payloadMask&BitPower != 0 {
		v, err := ReadPowerMw(bus, addr7)
		if err != nil {
			return 0, err
		}
		put(v)
	}
	return n, nil
}

// SampleSize reports the byte count the current payload mask produces:
// 2 bytes per enabled field.
func (Driver) SampleSize(c drivers.Context) int {
	ctx := ctxOf(c)
	n := 0
	for _, bit := range []byte{BitBusVoltage, BitShuntVoltage, BitCurrent, BitPower} {
		if ctx.payloadMask&bit != 0 {
			n += 2
		}
	}
	return n
}

// Configure applies one field write (spec.md §4.4/§9: called by the
// manager under the bus mutex).
func (Driver) Configure(c drivers.Context, bus iohw.I2CBus, addr7 byte, fieldID, param byte) bool {
	ctx := ctxOf(c)
	switch fieldID {
	case FieldSetPeriod:
		return true // handled entirely by sensor.Manager.

	case FieldSetGain:
		if err := SetGain(bus, addr7, param); err != nil {
			return false
		}
		ctx.gain = param
		return true

	case FieldSetRange:
		if err := SetBusRange(bus, addr7, param); err != nil {
			return false
		}
		ctx.busRange = param
		return true

	case FieldSetCal:
		cal := uint16(param)
		if err := SetCalibration(bus, addr7, cal); err != nil {
			return false
		}
		ctx.calibration = cal
		return true

	case FieldSetPayloadMask:
		ctx.payloadMask = param
		return true

	default:
		return false
	}
}

// ReadConfigBytes encodes fieldID's cached value (spec.md §4.4: "1-4
// bytes the driver chose to encode").
func (Driver) ReadConfigBytes(c drivers.Context, fieldID byte, out []byte) (int, bool) {
	ctx := ctxOf(c)
	switch fieldID {
	case FieldGetGain:
		out[0] = ctx.gain
		return 1, true

	case FieldGetRange:
		out[0] = ctx.busRange
		return 1, true

	case FieldGetCal:
		out[0] = byte(ctx.calibration >> 8)
		out[1] = byte(ctx.calibration)
		return 2, true

	case FieldGetPayloadMask:
		out[0] = ctx.payloadMask
		return 1, true

	default:
		return 0, false
	}
}

// ListFieldIDs enumerates the fields GET_CONFIG concatenates: period
// (answered by the manager itself), gain, range, calibration --
// mirroring original_source's cmd_task.c GET_CONFIG sequence.
func (Driver) ListFieldIDs() []byte {
	return []byte{FieldGetPeriod, FieldGetGain, FieldGetRange, FieldGetCal}
}

// Info is this driver's registry entry.
var Info = drivers.Info{
	TypeCode:      TypeCode,
	Name:          "ina219",
	NewContext:    NewContext,
	Driver:        GetDriver,
	DefaultPeriod: 500 * time.Millisecond, // original_source: 5 * 100ms.
}
